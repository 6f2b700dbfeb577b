package hub

import (
	"log"
	"sort"
	"sync"
)

// Hub はルーム→接続の対応表を管理するルーターオブジェクト。
// プロセス起動時に1度だけ生成し、発行や照会が必要なコンポーネントに
// 参照として渡す。ルームは参加者がいる間だけ存在し、空になると消える。
//
// 全ルームの参加・離脱・発行は単一のミューテックスで直列化される。
// これにより、同一ルームに対する発行順序が全メンバーから同じ順序で
// 観測されること、およびクリーンアップ開始後の接続が配信対象に
// ならないことを保証する。
type Hub struct {
	// mu はroomsと各Clientのルーム集合・送信状態を保護する。
	mu sync.Mutex
	// rooms はルーム名→参加中接続の集合。
	rooms map[string]map[*Client]struct{}
}

// NewHub は新しいHubを生成する。
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// TeamRoom はチームIDに対応するチームルーム名を返す。
func TeamRoom(teamID string) string { return "team:" + teamID }

// UserRoom はユーザーIDに対応する個人ルーム名を返す。
func UserRoom(userID string) string { return "user:" + userID }

// Emit はルームの全参加者にイベントを配信する。
// ルームが存在しない（参加者がいない）場合は何もしない。
func (h *Hub) Emit(room string, ev Event) {
	frame, err := Marshal(ev)
	if err != nil {
		log.Printf("イベントのシリアライズに失敗: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.emitLocked(room, frame, nil)
}

// EmitExcludingSender は送信者自身を除くルームの全参加者にイベントを配信する。
func (h *Hub) EmitExcludingSender(sender *Client, room string, ev Event) {
	frame, err := Marshal(ev)
	if err != nil {
		log.Printf("イベントのシリアライズに失敗: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.emitLocked(room, frame, sender)
}

// EmitToUser は指定ユーザーの個人ルームにイベントを配信する。
// 同一ユーザーの複数デバイスすべてに届く（マルチキャスト）。
// 接続が1本もない場合は何もしない。
func (h *Hub) EmitToUser(userID string, ev Event) {
	h.Emit(UserRoom(userID), ev)
}

// OnlineUserIDs はチームルームに現在参加中のユーザーIDの集合を返す。
// ユーザーID単位で重複排除し、ソート済みのスライスを返す。
func (h *Hub) OnlineUserIDs(teamID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.onlineUserIDsLocked(teamID)
}

// onlineUserIDsLocked はOnlineUserIDsのロック済み内部実装。
func (h *Hub) onlineUserIDsLocked(teamID string) []string {
	members := h.rooms[TeamRoom(teamID)]
	seen := make(map[string]struct{}, len(members))
	ids := make([]string, 0, len(members))
	for c := range members {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		ids = append(ids, c.UserID)
	}
	sort.Strings(ids)
	return ids
}

// register は認証済み接続をHubに登録する。
// 個人ルームと（チーム所属があれば）チームルームに参加させ、
// 本人にのみ現在のオンライン一覧を送り、他のチームメンバーに
// userOnlineを通知する。一覧は本接続の参加前の状態を写し取る。
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var snapshot []string
	if c.TeamID != "" {
		snapshot = h.onlineUserIDsLocked(c.TeamID)
	} else {
		snapshot = []string{}
	}

	h.joinLocked(c, UserRoom(c.UserID))
	if c.TeamID != "" {
		h.joinLocked(c, TeamRoom(c.TeamID))
	}

	if frame, err := Marshal(&InitialUserStatus{OnlineUserIDs: snapshot}); err == nil {
		c.enqueueLocked(frame)
	} else {
		log.Printf("initialUserStatusのシリアライズに失敗: %v", err)
	}

	if c.TeamID != "" {
		if frame, err := Marshal(&UserOnline{UserID: c.UserID}); err == nil {
			h.emitLocked(TeamRoom(c.TeamID), frame, c)
		} else {
			log.Printf("userOnlineのシリアライズに失敗: %v", err)
		}
	}
}

// unregister は接続をHubから取り除く。
// 参加中の全ルームから同期的に離脱させた後、残りのチームメンバーに
// userOfflineを通知する。離脱はロック内で完了するため、離脱後に
// 発行されたイベントがこの接続に届くことはない。多重呼び出しは無害。
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.unregistered {
		return
	}
	c.unregistered = true

	for room := range c.rooms {
		h.leaveLocked(c, room)
	}

	if c.TeamID != "" {
		if frame, err := Marshal(&UserOffline{UserID: c.UserID}); err == nil {
			h.emitLocked(TeamRoom(c.TeamID), frame, nil)
		} else {
			log.Printf("userOfflineのシリアライズに失敗: %v", err)
		}
	}

	c.closeSendLocked()
}

// joinLocked は接続をルームに参加させる。既参加の場合は何もしない。
func (h *Hub) joinLocked(c *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// leaveLocked は接続をルームから離脱させる。空になったルームは削除する。
func (h *Hub) leaveLocked(c *Client, room string) {
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, c)
	delete(c.rooms, room)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// emitLocked はルームの参加者にフレームを積む共通処理。
// exceptが非nilの場合はその接続をスキップする。
func (h *Hub) emitLocked(room string, frame []byte, except *Client) {
	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		c.enqueueLocked(frame)
	}
}

package hub

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nao1215/teamhub/pkg/middleware"
)

const (
	// writeWait は1フレームの書き込みに許容する時間。
	writeWait = 10 * time.Second
	// pongWait はpong応答を待つ時間。これを超えると切断とみなす。
	pongWait = 60 * time.Second
	// pingPeriod はpingの送信間隔。pongWaitより短くすること。
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize は受信フレームの最大サイズ（バイト）。
	maxMessageSize = 4096
	// sendBufferSize は送信チャネルのバッファ長。
	// あふれたクライアントは低速とみなして切断する。
	sendBufferSize = 256
)

// Client は1本のWebSocketセッションを表す。
// 書き込みはsendチャネルを消費する単一のwriter goroutineに集約され、
// 1接続あたりの配信順序がチャネルのFIFOで保たれる。
// 同一ユーザーの複数接続はそれぞれ独立したClientとして扱う。
type Client struct {
	// ID は接続ごとに採番される一意のID（UUID）。
	ID string
	// UserID は認証済みユーザーの一意識別子。
	UserID string
	// Username はユーザーのログイン名。
	Username string
	// TeamID は所属チームのID。無所属の場合は空文字列で、
	// その接続はチームルームに一切参加しない。
	TeamID string

	// hub は所属するHub。
	hub *Hub
	// conn はWebSocket接続。
	conn *websocket.Conn
	// send は配信待ちフレームのFIFOキュー。
	send chan []byte
	// rooms は参加中のルーム名の集合（hub.muで保護）。
	rooms map[string]struct{}
	// closed はsendチャネルがクローズ済みか（hub.muで保護）。
	closed bool
	// unregistered はHubからの登録解除が完了したか（hub.muで保護）。
	unregistered bool
}

// newClient は認証済みクレームからClientを生成する。
func newClient(h *Hub, conn *websocket.Conn, claims *middleware.JWTClaims) *Client {
	return &Client{
		ID:       newConnectionID(),
		UserID:   claims.UserID,
		Username: claims.Username,
		TeamID:   claims.TeamID,
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		rooms:    make(map[string]struct{}),
	}
}

// enqueueLocked はフレームを送信キューに積む。hub.muを保持して呼ぶこと。
// キューが満杯のクライアントは低速とみなしてクローズする。
// クローズ済みのクライアントには何もしない。
func (c *Client) enqueueLocked(frame []byte) {
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		log.Printf("送信バッファがあふれたため接続を切断: conn=%s user=%s", c.ID, c.UserID)
		c.closeSendLocked()
	}
}

// closeSendLocked はsendチャネルをクローズする。hub.muを保持して呼ぶこと。
func (c *Client) closeSendLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump はWebSocketからの受信ループ。
// 接続エラー（クライアント切断を含む）で抜け、Hubからの登録解除と
// コネクションのクローズを行う。受信イベントの個別の失敗は
// そのフレームの破棄にとどめ、ループは継続する。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		if err := c.conn.Close(); err != nil {
			log.Printf("コネクションのクローズに失敗: conn=%s: %v", c.ID, err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket読み込みエラー: conn=%s: %v", c.ID, err)
			}
			return
		}
		c.handleInbound(raw)
	}
}

// handleInbound はクライアントから受信した1フレームを処理する。
// 不正なフレームはログに残して破棄し、接続は維持する。
func (c *Client) handleInbound(raw []byte) {
	ev, err := decodeInbound(raw)
	if err != nil {
		log.Printf("受信フレームを破棄: conn=%s: %v", c.ID, err)
		return
	}

	switch m := ev.(type) {
	case *SendTeamMessage:
		if c.TeamID == "" {
			log.Printf("チーム未所属のためチームチャットを破棄: conn=%s user=%s", c.ID, c.UserID)
			return
		}
		c.hub.Emit(TeamRoom(c.TeamID), &TeamMessage{
			From:      c.UserID,
			Text:      m.Msg,
			Timestamp: time.Now().UTC(),
		})
	case *SendDM:
		if m.ToUserID == "" {
			log.Printf("宛先のないDMを破棄: conn=%s user=%s", c.ID, c.UserID)
			return
		}
		ts := time.Now().UTC()
		// 宛先の個人ルームへ
		c.hub.EmitToUser(m.ToUserID, &DirectMessage{
			From:      c.UserID,
			Text:      m.Message,
			Timestamp: ts,
		})
		// 送信者自身の個人ルームへ（他デバイス同期用）
		c.hub.EmitToUser(c.UserID, &DirectMessage{
			To:        m.ToUserID,
			From:      c.UserID,
			Text:      m.Message,
			Timestamp: ts,
		})
	}
}

// writePump はWebSocketへの書き込みループ。
// sendチャネルのフレームを順に書き出し、定期的にpingを送る。
// チャネルのクローズまたは書き込みエラーで抜ける。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

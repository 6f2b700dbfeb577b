package hub

import (
	"encoding/json"
	"testing"
	"time"
)

// newTestClient はWebSocket接続なしでHubの内部動作を検証するための
// テスト用Clientを生成する。
func newTestClient(h *Hub, userID, teamID string) *Client {
	return &Client{
		ID:     newConnectionID(),
		UserID: userID,
		TeamID: teamID,
		hub:    h,
		send:   make(chan []byte, 64),
		rooms:  make(map[string]struct{}),
	}
}

// recvFrame はクライアントの送信キューから1フレーム取り出してパースする。
func recvFrame(t *testing.T, c *Client) (string, json.RawMessage) {
	t.Helper()

	select {
	case frame, ok := <-c.send:
		if !ok {
			t.Fatal("送信チャネルがクローズされている")
		}
		var env envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("フレームのパースに失敗: %v", err)
		}
		return env.Event, env.Data
	case <-time.After(time.Second):
		t.Fatal("フレームの受信がタイムアウト")
	}
	return "", nil
}

// expectNoFrame はクライアントの送信キューが空であることを検証する。
func expectNoFrame(t *testing.T, c *Client) {
	t.Helper()

	select {
	case frame, ok := <-c.send:
		if ok {
			t.Fatalf("受信しないはずのフレームを受信: %s", frame)
		}
	default:
	}
}

// decodeData はイベントペイロードを指定の型にパースする。
func decodeData[T any](t *testing.T, data json.RawMessage) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("ペイロードのパースに失敗: %v", err)
	}
	return v
}

// TestRegisterPresence は接続登録時のプレゼンス通知を検証する。
func TestRegisterPresence(t *testing.T) {
	t.Parallel()

	h := NewHub()

	// ユーザーAが接続: 自分だけの空のオンライン一覧を受信する
	a := newTestClient(h, "user-a", "team-1")
	h.register(a)

	event, data := recvFrame(t, a)
	if event != "initialUserStatus" {
		t.Fatalf("event = %q, want %q", event, "initialUserStatus")
	}
	status := decodeData[InitialUserStatus](t, data)
	if len(status.OnlineUserIDs) != 0 {
		t.Errorf("onlineUserIds = %v, want 空", status.OnlineUserIDs)
	}

	// ユーザーBが接続: AはuserOnlineを受信し、Bは一覧に[A]を受信する
	b := newTestClient(h, "user-b", "team-1")
	h.register(b)

	event, data = recvFrame(t, a)
	if event != "userOnline" {
		t.Fatalf("event = %q, want %q", event, "userOnline")
	}
	online := decodeData[UserOnline](t, data)
	if online.UserID != "user-b" {
		t.Errorf("userId = %q, want %q", online.UserID, "user-b")
	}

	event, data = recvFrame(t, b)
	if event != "initialUserStatus" {
		t.Fatalf("event = %q, want %q", event, "initialUserStatus")
	}
	status = decodeData[InitialUserStatus](t, data)
	if len(status.OnlineUserIDs) != 1 || status.OnlineUserIDs[0] != "user-a" {
		t.Errorf("onlineUserIds = %v, want [user-a]", status.OnlineUserIDs)
	}

	// BにはuserOnline（自分自身の分）は届かない
	expectNoFrame(t, b)
}

// TestEmitOrdering は同一ルームへの発行順序が全メンバーで保たれることを検証する。
func TestEmitOrdering(t *testing.T) {
	t.Parallel()

	h := NewHub()
	a := newTestClient(h, "user-a", "team-1")
	b := newTestClient(h, "user-b", "team-1")
	h.register(a)
	h.register(b)

	// プレゼンス関連のフレームを読み捨てる
	recvFrame(t, a) // initialUserStatus
	recvFrame(t, a) // userOnline(B)
	recvFrame(t, b) // initialUserStatus

	h.Emit(TeamRoom("team-1"), &ScheduleRemoved{Message: "first", ScheduleID: "s-1"})
	h.Emit(TeamRoom("team-1"), &ScheduleRemoved{Message: "second", ScheduleID: "s-2"})

	for _, c := range []*Client{a, b} {
		event, data := recvFrame(t, c)
		if event != "scheduleRemoved" {
			t.Fatalf("event = %q, want %q", event, "scheduleRemoved")
		}
		removed := decodeData[ScheduleRemoved](t, data)
		if removed.ScheduleID != "s-1" {
			t.Errorf("user=%s 1件目 = %q, want %q", c.UserID, removed.ScheduleID, "s-1")
		}

		_, data = recvFrame(t, c)
		removed = decodeData[ScheduleRemoved](t, data)
		if removed.ScheduleID != "s-2" {
			t.Errorf("user=%s 2件目 = %q, want %q", c.UserID, removed.ScheduleID, "s-2")
		}
	}
}

// TestUnregister は登録解除後の接続が配信対象にならないことを検証する。
func TestUnregister(t *testing.T) {
	t.Parallel()

	h := NewHub()
	a := newTestClient(h, "user-a", "team-1")
	b := newTestClient(h, "user-b", "team-1")
	h.register(a)
	h.register(b)

	recvFrame(t, a) // initialUserStatus
	recvFrame(t, a) // userOnline(B)
	recvFrame(t, b) // initialUserStatus

	h.unregister(b)

	// Aは残りのメンバーとしてuserOfflineを受信する
	event, data := recvFrame(t, a)
	if event != "userOffline" {
		t.Fatalf("event = %q, want %q", event, "userOffline")
	}
	offline := decodeData[UserOffline](t, data)
	if offline.UserID != "user-b" {
		t.Errorf("userId = %q, want %q", offline.UserID, "user-b")
	}

	// 離脱後の発行はBに届かない
	h.Emit(TeamRoom("team-1"), &ScheduleRemoved{Message: "gone", ScheduleID: "s-9"})

	event, data = recvFrame(t, a)
	if event != "scheduleRemoved" {
		t.Fatalf("event = %q, want %q", event, "scheduleRemoved")
	}
	select {
	case frame, ok := <-b.send:
		if ok {
			t.Fatalf("登録解除済みの接続がフレームを受信: %s", frame)
		}
	default:
		t.Fatal("登録解除後にsendチャネルがクローズされていない")
	}

	// 多重呼び出しは無害であること
	h.unregister(b)
}

// TestTeamlessConnection はチーム未所属の接続がチームルームに参加しないことを検証する。
func TestTeamlessConnection(t *testing.T) {
	t.Parallel()

	h := NewHub()
	c := newTestClient(h, "user-solo", "")
	h.register(c)

	event, data := recvFrame(t, c)
	if event != "initialUserStatus" {
		t.Fatalf("event = %q, want %q", event, "initialUserStatus")
	}
	status := decodeData[InitialUserStatus](t, data)
	if len(status.OnlineUserIDs) != 0 {
		t.Errorf("onlineUserIds = %v, want 空", status.OnlineUserIDs)
	}

	if _, ok := c.rooms[UserRoom("user-solo")]; !ok {
		t.Error("個人ルームに参加していない")
	}
	if len(c.rooms) != 1 {
		t.Errorf("参加ルーム数 = %d, want 1", len(c.rooms))
	}

	// どのチームルームへの発行もこの接続に届かない
	h.Emit(TeamRoom("team-1"), &ScheduleRemoved{Message: "x", ScheduleID: "s-1"})
	h.Emit(TeamRoom(""), &ScheduleRemoved{Message: "x", ScheduleID: "s-2"})
	expectNoFrame(t, c)
}

// TestMultiDevicePresence は同一ユーザーの複数接続の扱いを検証する。
func TestMultiDevicePresence(t *testing.T) {
	t.Parallel()

	h := NewHub()
	dev1 := newTestClient(h, "user-a", "team-1")
	dev2 := newTestClient(h, "user-a", "team-1")
	h.register(dev1)
	h.register(dev2)

	recvFrame(t, dev1) // initialUserStatus

	// プレゼンスは接続単位: 2台目の接続でもuserOnlineが発行される
	event, data := recvFrame(t, dev1)
	if event != "userOnline" {
		t.Fatalf("event = %q, want %q", event, "userOnline")
	}
	online := decodeData[UserOnline](t, data)
	if online.UserID != "user-a" {
		t.Errorf("userId = %q, want %q", online.UserID, "user-a")
	}

	// 2台目のオンライン一覧はユーザーID単位で重複排除される
	_, data = recvFrame(t, dev2)
	status := decodeData[InitialUserStatus](t, data)
	if len(status.OnlineUserIDs) != 1 || status.OnlineUserIDs[0] != "user-a" {
		t.Errorf("onlineUserIds = %v, want [user-a]", status.OnlineUserIDs)
	}

	// OnlineUserIDsも重複なし
	got := h.OnlineUserIDs("team-1")
	if len(got) != 1 || got[0] != "user-a" {
		t.Errorf("OnlineUserIDs() = %v, want [user-a]", got)
	}
}

// TestEmitToUser は個人ルームへのマルチキャスト配信を検証する。
func TestEmitToUser(t *testing.T) {
	t.Parallel()

	h := NewHub()
	dev1 := newTestClient(h, "user-a", "team-1")
	dev2 := newTestClient(h, "user-a", "team-1")
	h.register(dev1)
	h.register(dev2)

	recvFrame(t, dev1) // initialUserStatus
	recvFrame(t, dev1) // userOnline(dev2)
	recvFrame(t, dev2) // initialUserStatus

	h.EmitToUser("user-a", &DirectMessage{From: "user-b", Text: "hello", Timestamp: time.Now().UTC()})

	for _, c := range []*Client{dev1, dev2} {
		event, data := recvFrame(t, c)
		if event != "newDm" {
			t.Fatalf("event = %q, want %q", event, "newDm")
		}
		dm := decodeData[DirectMessage](t, data)
		if dm.From != "user-b" || dm.Text != "hello" {
			t.Errorf("newDm = %+v, want from=user-b text=hello", dm)
		}
	}

	// 接続が1本もないユーザーへの配信は黙って何もしない
	h.EmitToUser("user-nobody", &DirectMessage{From: "user-a", Text: "void", Timestamp: time.Now().UTC()})
}

// TestEmitExcludingSender は送信者除外の配信を検証する。
func TestEmitExcludingSender(t *testing.T) {
	t.Parallel()

	h := NewHub()
	a := newTestClient(h, "user-a", "team-1")
	b := newTestClient(h, "user-b", "team-1")
	h.register(a)
	h.register(b)

	recvFrame(t, a) // initialUserStatus
	recvFrame(t, a) // userOnline(B)
	recvFrame(t, b) // initialUserStatus

	h.EmitExcludingSender(a, TeamRoom("team-1"), &UserOnline{UserID: "user-a"})

	event, _ := recvFrame(t, b)
	if event != "userOnline" {
		t.Fatalf("event = %q, want %q", event, "userOnline")
	}
	expectNoFrame(t, a)
}

// TestSlowConsumer は送信バッファがあふれた接続の切断を検証する。
func TestSlowConsumer(t *testing.T) {
	t.Parallel()

	h := NewHub()
	slow := &Client{
		ID:     newConnectionID(),
		UserID: "user-slow",
		TeamID: "team-1",
		hub:    h,
		send:   make(chan []byte, 1),
		rooms:  make(map[string]struct{}),
	}
	h.register(slow) // initialUserStatusでバッファが埋まる

	// 次の発行でバッファがあふれ、sendチャネルがクローズされる
	h.Emit(TeamRoom("team-1"), &ScheduleRemoved{Message: "x", ScheduleID: "s-1"})

	if _, ok := <-slow.send; !ok {
		t.Fatal("キュー済みのフレームが読めない")
	}
	if _, ok := <-slow.send; ok {
		t.Fatal("あふれた接続のsendチャネルがクローズされていない")
	}

	// クローズ後の発行でもパニックしないこと
	h.Emit(TeamRoom("team-1"), &ScheduleRemoved{Message: "z", ScheduleID: "s-3"})
	h.unregister(slow)
}

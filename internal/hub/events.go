package hub

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event はWebSocketで配信するイベントを表す。
// 実装型はこのパッケージ内に閉じており、イベント名と
// ペイロードの形が型ごとに固定されている。
type Event interface {
	// eventName はクライアントが観測するイベント名を返す。
	eventName() string
}

// envelope はWebSocketフレームのJSON構造。
// イベント名とペイロードを1つのテキストフレームにまとめる。
type envelope struct {
	// Event はイベント名。
	Event string `json:"event"`
	// Data はイベント固有のペイロード。
	Data json.RawMessage `json:"data"`
}

// Marshal はイベントをWebSocketフレーム用のJSONにシリアライズする。
func Marshal(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("イベントペイロードのシリアライズに失敗: %w", err)
	}
	frame, err := json.Marshal(envelope{Event: e.eventName(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("イベントフレームのシリアライズに失敗: %w", err)
	}
	return frame, nil
}

// ---------------------------------------------------------------------------
// プレゼンスイベント
// ---------------------------------------------------------------------------

// InitialUserStatus は接続直後の本人にのみ送る、現在オンラインの
// ユーザーID一覧。ユーザーID単位で重複排除・ソート済み。
type InitialUserStatus struct {
	OnlineUserIDs []string `json:"onlineUserIds"`
}

func (*InitialUserStatus) eventName() string { return "initialUserStatus" }

// UserOnline はチームルームへの新規接続を他のメンバーに通知する。
type UserOnline struct {
	UserID string `json:"userId"`
}

func (*UserOnline) eventName() string { return "userOnline" }

// UserOffline はチームルームからの切断を残りのメンバーに通知する。
type UserOffline struct {
	UserID string `json:"userId"`
}

func (*UserOffline) eventName() string { return "userOffline" }

// ---------------------------------------------------------------------------
// チャットイベント
// ---------------------------------------------------------------------------

// TeamMessage はチーム全体チャットのメッセージ。送信者自身にも配信される。
type TeamMessage struct {
	From      string    `json:"from"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (*TeamMessage) eventName() string { return "newTeamMessage" }

// DirectMessage は1:1チャットのメッセージ。宛先の個人ルームと、
// 送信者自身の個人ルーム（他デバイス同期用、Toフィールド付き）の
// 2回に分けて配信される。
type DirectMessage struct {
	To        string    `json:"to,omitempty"`
	From      string    `json:"from"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (*DirectMessage) eventName() string { return "newDm" }

// ---------------------------------------------------------------------------
// 変更通知イベント（CRUDハンドラがDBコミット後に発行する）
// ---------------------------------------------------------------------------

// Schedule は通知ペイロードに含める予定レコードのワイヤ表現。
type Schedule struct {
	ScheduleID  string `json:"schedule_id"`
	UserID      string `json:"user_id"`
	TeamID      string `json:"team_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Color       string `json:"color"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// ScheduleAdded は予定の新規作成をチームルームに通知する。
type ScheduleAdded struct {
	Message  string   `json:"message"`
	Schedule Schedule `json:"schedule"`
}

func (*ScheduleAdded) eventName() string { return "scheduleAdded" }

// ScheduleUpdated は予定の更新をチームルームに通知する。
type ScheduleUpdated struct {
	Message  string   `json:"message"`
	Schedule Schedule `json:"schedule"`
}

func (*ScheduleUpdated) eventName() string { return "scheduleUpdated" }

// ScheduleRemoved は予定の削除をチームルームに通知する。
type ScheduleRemoved struct {
	Message    string `json:"message"`
	ScheduleID string `json:"schedule"`
}

func (*ScheduleRemoved) eventName() string { return "scheduleRemoved" }

// TaskCreated はチェックリスト項目の作成をチームルームに通知する。
type TaskCreated struct {
	Message    string `json:"message"`
	ScheduleID string `json:"scheduleId"`
	TaskID     string `json:"taskId"`
	Title      string `json:"title"`
	ManagerID  string `json:"managerId"`
	DueDate    string `json:"due_date"`
}

func (*TaskCreated) eventName() string { return "createTask" }

// TaskCompletionChanged はチェックリスト項目の完了状態の変更を通知する。
type TaskCompletionChanged struct {
	Message     string `json:"message"`
	TaskID      string `json:"taskId"`
	IsCompleted bool   `json:"isCompleted"`
}

func (*TaskCompletionChanged) eventName() string { return "isTaskCompletedChanged" }

// TaskDeleted はチェックリスト項目の削除を通知する。
type TaskDeleted struct {
	Message string `json:"message"`
	TaskID  string `json:"taskId"`
}

func (*TaskDeleted) eventName() string { return "deleteTask" }

// MemberAdded はチームへの新規メンバー追加を通知する。
type MemberAdded struct {
	Message  string `json:"message"`
	UserID   string `json:"user"`
	Username string `json:"username"`
}

func (*MemberAdded) eventName() string { return "userAdded" }

// MemberRemoved はチームからのメンバー離脱・退出を通知する。
type MemberRemoved struct {
	Message string `json:"message"`
	UserID  string `json:"user"`
}

func (*MemberRemoved) eventName() string { return "removeUser" }

// ---------------------------------------------------------------------------
// クライアントから受信するイベント
// ---------------------------------------------------------------------------

// inboundEvent はクライアントから受信するイベントの閉じた型集合。
type inboundEvent interface {
	isInbound()
}

// SendTeamMessage はチームチャットの送信要求。
type SendTeamMessage struct {
	Msg string `json:"msg"`
}

func (*SendTeamMessage) isInbound() {}

// SendDM は1:1チャットの送信要求。
type SendDM struct {
	ToUserID string `json:"toUserId"`
	Message  string `json:"message"`
}

func (*SendDM) isInbound() {}

// decodeInbound は受信フレームをイベント名で判別し、対応する型に
// デシリアライズする。未知のイベント名や不正なペイロードはエラーとなり、
// 呼び出し側は該当フレームを破棄する。
func decodeInbound(raw []byte) (inboundEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("受信フレームのパースに失敗: %w", err)
	}

	switch env.Event {
	case "sendTeamMessage":
		var ev SendTeamMessage
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("sendTeamMessageのパースに失敗: %w", err)
		}
		return &ev, nil
	case "sendDm":
		var ev SendDM
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("sendDmのパースに失敗: %w", err)
		}
		return &ev, nil
	default:
		return nil, fmt.Errorf("未知のイベント名: %q", env.Event)
	}
}

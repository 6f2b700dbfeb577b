// Package hub はリアルタイム通知の中核を提供する。
//
// 認証済みWebSocket接続をルーム（チームルームと個人ルーム）に対応付け、
// オンライン状態の通知、チャットの中継、およびDB更新後の変更イベントの
// ファンアウト配信を行う。配信はベストエフォート（最大1回、再送なし）で、
// ルーム単位の発行順序のみ保証する。
//
// 主な構成要素:
//   - Hub: ルーム→接続の対応表を持つ明示的なルーターオブジェクト
//   - Client: 1本のWebSocketセッション（読み書きポンプ付き）
//   - Event: サブシステムごとに閉じた型付きイベント群
package hub

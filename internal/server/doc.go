// Package server はチームコラボレーションバックエンドのHTTPサーバー実装。
// ユーザー認証、チーム管理、予定表、タスクチェックリストのREST APIと、
// リアルタイム通知用のWebSocketエンドポイントを提供する。
package server

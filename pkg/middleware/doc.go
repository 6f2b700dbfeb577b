// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// JWT認証トークンの発行と検証、チーム所属の確認、パニックリカバリ、
// CORS設定など、REST APIとWebSocketハンドシェイクで共通して使用する
// 処理を含む。
package middleware

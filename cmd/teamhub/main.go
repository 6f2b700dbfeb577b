// teamhubサーバーのエントリポイント。
// チームの予定とタスクを管理するREST APIと、チームルーム単位で
// イベントを配信するWebSocketエンドポイントを提供する。
package main

import (
	"log"
	"os"

	"github.com/nao1215/teamhub/internal/server"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv, err := server.NewServer(port)
	if err != nil {
		log.Fatalf("サーバーの初期化に失敗: %v", err)
	}

	log.Printf("teamhubサーバーを起動します: :%s", port)
	if err := srv.Run(); err != nil {
		log.Fatalf("サーバーの起動に失敗: %v", err)
	}
}

package server

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	teamhubdb "github.com/nao1215/teamhub/internal/server/db"
	"github.com/nao1215/teamhub/pkg/middleware"
)

// userResponse はユーザー情報のJSONレスポンス構造。
type userResponse struct {
	// UserID はユーザーの一意識別子。
	UserID string `json:"user_id"`
	// Username はログイン名。
	Username string `json:"username"`
	// TeamID は所属チームのID。未所属の場合は空文字列。
	TeamID string `json:"team_id"`
}

// registerRequest はユーザー登録リクエストのJSON構造。
type registerRequest struct {
	// Username はログイン名。アカウント間で一意。
	Username string `json:"username" binding:"required"`
	// Password は平文パスワード。保存前にハッシュ化される。
	Password string `json:"password" binding:"required"`
}

// handleRegister は新規ユーザーを登録するハンドラ。
// ユーザー名が既に使用されている場合は409を返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		hashed, err := hashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "パスワードのハッシュ化に失敗しました"})
			log.Printf("パスワードハッシュ化エラー: %v", err)
			return
		}

		user, err := s.queries.CreateUser(c.Request.Context(), teamhubdb.CreateUserParams{
			UserID:   uuid.New().String(),
			Username: req.Username,
			Password: hashed,
		})
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				c.JSON(http.StatusConflict, gin.H{"error": "このユーザー名は既に使用されています"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの作成に失敗しました"})
			log.Printf("ユーザー作成エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "ユーザーを登録しました",
			"user_id":  user.UserID,
			"username": user.Username,
		})
	}
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Username はログイン名。
	Username string `json:"username" binding:"required"`
	// Password は平文パスワード。
	Password string `json:"password" binding:"required"`
}

// handleLogin は認証情報を検証しJWTを発行するハンドラ。
// ユーザー名不明とパスワード不一致は同じ401を返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		user, err := s.queries.GetUserByUsername(c.Request.Context(), req.Username)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが一致しません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログイン処理に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		if !verifyPassword(req.Password, user.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが一致しません"})
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, user.UserID, user.Username, user.TeamID.String)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "ログインしました",
			"token":   token,
		})
	}
}

// handleGetMe は認証済みユーザー自身の情報を返すハンドラ。
func (s *Server) handleGetMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		user, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー情報の取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, userResponse{
			UserID:   user.UserID,
			Username: user.Username,
			TeamID:   user.TeamID.String,
		})
	}
}

// handleListUsers は全ユーザーの一覧を返すハンドラ。
// チーム招待時のユーザー検索に使う。パスワードは含めない。
func (s *Server) handleListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.queries.ListUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー一覧の取得に失敗しました"})
			log.Printf("ユーザー一覧取得エラー: %v", err)
			return
		}

		responses := make([]userResponse, 0, len(users))
		for _, u := range users {
			responses = append(responses, userResponse{
				UserID:   u.UserID,
				Username: u.Username,
				TeamID:   u.TeamID.String,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

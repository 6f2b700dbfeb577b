package server

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/teamhub/internal/hub"
	teamhubdb "github.com/nao1215/teamhub/internal/server/db"
	"github.com/nao1215/teamhub/pkg/middleware"
)

// nullString は文字列をsql.NullStringに変換する。空文字列はNULL扱い。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// teamMemberResponse はチームメンバーのJSONレスポンス構造。
type teamMemberResponse struct {
	// UserID はメンバーのユーザーID。
	UserID string `json:"user_id"`
	// Username はメンバーのログイン名。
	Username string `json:"username"`
}

// requireTeamOwner は認証済みユーザーが所属チームのオーナーであることを確認する。
// 確認に失敗した場合はレスポンスを書き込みfalseを返す。
func (s *Server) requireTeamOwner(c *gin.Context) (teamhubdb.Team, bool) {
	teamID := middleware.GetTeamID(c)
	userID := middleware.GetUserID(c)

	team, err := s.queries.GetTeamByID(c.Request.Context(), teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "チームが見つかりません"})
			return teamhubdb.Team{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "チーム情報の取得に失敗しました"})
		log.Printf("チーム取得エラー: %v", err)
		return teamhubdb.Team{}, false
	}

	if team.OwnerUserid != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "チームオーナーのみ実行できる操作です"})
		return teamhubdb.Team{}, false
	}

	return team, true
}

// createTeamRequest はチーム作成リクエストのJSON構造。
type createTeamRequest struct {
	// TeamName は新しいチームの名前。
	TeamName string `json:"teamName" binding:"required"`
}

// handleCreateTeam は新しいチームを作成し作成者をオーナー兼メンバーにするハンドラ。
// チーム作成と所属更新は同一トランザクションで行い、新しい所属を反映した
// トークンを再発行して返す。
func (s *Server) handleCreateTeam() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		username := middleware.GetUsername(c)

		var req createTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		// トークンが古い可能性があるため所属はデータベースで確認する
		user, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー情報の取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}
		if user.TeamID.Valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "既にチームに所属しています"})
			return
		}

		teamID := uuid.New().String()

		tx, err := s.db.BeginTx(c.Request.Context(), nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの作成に失敗しました"})
			log.Printf("トランザクション開始エラー: %v", err)
			return
		}
		defer func() { _ = tx.Rollback() }()

		qtx := s.queries.WithTx(tx)
		if _, err := qtx.CreateTeam(c.Request.Context(), teamhubdb.CreateTeamParams{
			TeamID:      teamID,
			Name:        req.TeamName,
			OwnerUserid: userID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの作成に失敗しました"})
			log.Printf("チーム作成エラー: %v", err)
			return
		}
		if err := qtx.SetUserTeam(c.Request.Context(), teamhubdb.SetUserTeamParams{
			TeamID: nullString(teamID),
			UserID: userID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの作成に失敗しました"})
			log.Printf("チーム所属更新エラー: %v", err)
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの作成に失敗しました"})
			log.Printf("トランザクションコミットエラー: %v", err)
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, userID, username, teamID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの再発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "チームを作成しました",
			"teamId":  teamID,
			"token":   token,
		})
	}
}

// handleGetTeam は所属チームの情報とメンバー一覧を返すハンドラ。
func (s *Server) handleGetTeam() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := middleware.GetTeamID(c)

		team, err := s.queries.GetTeamByID(c.Request.Context(), teamID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "チームが見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チーム情報の取得に失敗しました"})
			log.Printf("チーム取得エラー: %v", err)
			return
		}

		members, err := s.queries.ListTeamMembers(c.Request.Context(), nullString(teamID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "メンバー一覧の取得に失敗しました"})
			log.Printf("メンバー一覧取得エラー: %v", err)
			return
		}

		responses := make([]teamMemberResponse, 0, len(members))
		for _, m := range members {
			responses = append(responses, teamMemberResponse{UserID: m.UserID, Username: m.Username})
		}

		c.JSON(http.StatusOK, gin.H{
			"teamId":   team.TeamID,
			"teamName": team.Name,
			"ownerId":  team.OwnerUserid,
			"members":  responses,
		})
	}
}

// handleFindTeamID はデータベース上の所属チームを再確認しトークンを再発行するハンドラ。
// 他のメンバーにチームへ追加された直後、古いトークンを持つクライアントが呼び出す。
func (s *Server) handleFindTeamID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		username := middleware.GetUsername(c)

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

		token, err := middleware.GenerateJWT(s.jwtSecret, userID, username, user.TeamID.String)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの再発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"teamId": user.TeamID.String,
			"token":  token,
		})
	}
}

// changeOwnerRequest はオーナー変更リクエストのJSON構造。
type changeOwnerRequest struct {
	// UserID は新しいオーナーのユーザーID。
	UserID string `json:"userId" binding:"required"`
}

// handleChangeTeamOwner はチームのオーナーを別のメンバーに変更するハンドラ。
// 現在のオーナーのみ実行できる。
func (s *Server) handleChangeTeamOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		team, ok := s.requireTeamOwner(c)
		if !ok {
			return
		}

		var req changeOwnerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		// 新オーナーがチームのメンバーであることを確認する
		newOwner, err := s.queries.GetUserByID(c.Request.Context(), req.UserID)
		if err != nil || !newOwner.TeamID.Valid || newOwner.TeamID.String != team.TeamID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "指定されたユーザーはチームのメンバーではありません"})
			return
		}

		updated, err := s.queries.UpdateTeamOwner(c.Request.Context(), teamhubdb.UpdateTeamOwnerParams{
			OwnerUserid: req.UserID,
			TeamID:      team.TeamID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "オーナーの変更に失敗しました"})
			log.Printf("オーナー変更エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "チームオーナーを変更しました",
			"teamId":  updated.TeamID,
			"ownerId": updated.OwnerUserid,
		})
	}
}

// handleDeleteTeam はチームとその予定・タスクを削除するハンドラ。
// オーナーのみ実行できる。関連データの削除は同一トランザクションで行う。
func (s *Server) handleDeleteTeam() gin.HandlerFunc {
	return func(c *gin.Context) {
		team, ok := s.requireTeamOwner(c)
		if !ok {
			return
		}

		tx, err := s.db.BeginTx(c.Request.Context(), nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの削除に失敗しました"})
			log.Printf("トランザクション開始エラー: %v", err)
			return
		}
		defer func() { _ = tx.Rollback() }()

		qtx := s.queries.WithTx(tx)
		if err := qtx.DeleteTasksByTeam(c.Request.Context(), team.TeamID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの削除に失敗しました"})
			log.Printf("タスク削除エラー: %v", err)
			return
		}
		if err := qtx.DeleteSchedulesByTeam(c.Request.Context(), team.TeamID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの削除に失敗しました"})
			log.Printf("予定削除エラー: %v", err)
			return
		}
		if err := qtx.ClearTeamMembers(c.Request.Context(), nullString(team.TeamID)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの削除に失敗しました"})
			log.Printf("メンバー解除エラー: %v", err)
			return
		}
		if _, err := qtx.DeleteTeam(c.Request.Context(), team.TeamID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの削除に失敗しました"})
			log.Printf("チーム削除エラー: %v", err)
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームの削除に失敗しました"})
			log.Printf("トランザクションコミットエラー: %v", err)
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, middleware.GetUserID(c), middleware.GetUsername(c), "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの再発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "チームを削除しました",
			"token":   token,
		})
	}
}

// addMemberRequest はメンバー追加リクエストのJSON構造。
type addMemberRequest struct {
	// Username は追加するユーザーのログイン名。
	Username string `json:"username" binding:"required"`
}

// handleAddMember はユーザー名を指定してチームにメンバーを追加するハンドラ。
// オーナーのみ実行できる。コミット後にチームルームへuserAddedを通知する。
func (s *Server) handleAddMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		team, ok := s.requireTeamOwner(c)
		if !ok {
			return
		}

		var req addMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		user, err := s.queries.AssignUserTeamByUsername(c.Request.Context(), teamhubdb.AssignUserTeamByUsernameParams{
			TeamID:   nullString(team.TeamID),
			Username: req.Username,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "指定されたユーザーが見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "メンバーの追加に失敗しました"})
			log.Printf("メンバー追加エラー: %v", err)
			return
		}

		s.hub.Emit(hub.TeamRoom(team.TeamID), &hub.MemberAdded{
			Message:  "新しいメンバーがチームに参加しました",
			UserID:   user.UserID,
			Username: user.Username,
		})

		c.JSON(http.StatusOK, gin.H{"message": "メンバーを追加しました"})
	}
}

// handleLeaveTeam は認証済みユーザーが自分のチームから退出するハンドラ。
// オーナーは退出できない（先にオーナーを変更するかチームを削除する）。
// 退出後は所属なしのトークンを再発行し、チームルームへremoveUserを通知する。
func (s *Server) handleLeaveTeam() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		username := middleware.GetUsername(c)
		teamID := middleware.GetTeamID(c)

		team, err := s.queries.GetTeamByID(c.Request.Context(), teamID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "チームが見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チーム情報の取得に失敗しました"})
			log.Printf("チーム取得エラー: %v", err)
			return
		}
		if team.OwnerUserid == userID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "オーナーはチームから退出できません"})
			return
		}

		rows, err := s.queries.ClearUserTeam(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チームからの退出に失敗しました"})
			log.Printf("チーム退出エラー: %v", err)
			return
		}
		if rows == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, userID, username, "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの再発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		s.hub.Emit(hub.TeamRoom(teamID), &hub.MemberRemoved{
			Message: "メンバーがチームから退出しました",
			UserID:  userID,
		})

		c.JSON(http.StatusOK, gin.H{
			"message": "チームから退出しました",
			"token":   token,
		})
	}
}

// removeMemberRequest はメンバー除名リクエストのJSON構造。
type removeMemberRequest struct {
	// UserID は除名するユーザーのID。
	UserID string `json:"userId" binding:"required"`
}

// handleRemoveMember はオーナーが指定メンバーをチームから除名するハンドラ。
// 自分自身の除名はできない。コミット後にremoveUserを通知する。
func (s *Server) handleRemoveMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		team, ok := s.requireTeamOwner(c)
		if !ok {
			return
		}

		var req removeMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		if req.UserID == middleware.GetUserID(c) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "オーナー自身は除名できません"})
			return
		}

		// 対象者がチームのメンバーであることを確認する
		target, err := s.queries.GetUserByID(c.Request.Context(), req.UserID)
		if err != nil || !target.TeamID.Valid || target.TeamID.String != team.TeamID {
			c.JSON(http.StatusNotFound, gin.H{"error": "指定されたユーザーはチームのメンバーではありません"})
			return
		}

		if _, err := s.queries.ClearUserTeam(c.Request.Context(), req.UserID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "メンバーの除名に失敗しました"})
			log.Printf("メンバー除名エラー: %v", err)
			return
		}

		s.hub.Emit(hub.TeamRoom(team.TeamID), &hub.MemberRemoved{
			Message: "メンバーがチームから除名されました",
			UserID:  req.UserID,
		})

		c.JSON(http.StatusOK, gin.H{"message": "メンバーを除名しました"})
	}
}

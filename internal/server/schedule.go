package server

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/teamhub/internal/hub"
	teamhubdb "github.com/nao1215/teamhub/internal/server/db"
	"github.com/nao1215/teamhub/pkg/middleware"
)

// scheduleResponse は予定のJSONレスポンス構造。
type scheduleResponse struct {
	// ScheduleID は予定の一意識別子。
	ScheduleID string `json:"schedule_id"`
	// UserID は予定を作成したユーザーのID。
	UserID string `json:"user_id"`
	// TeamID は予定が属するチームのID。
	TeamID string `json:"team_id"`
	// Title は予定のタイトル。
	Title string `json:"title"`
	// Description は予定の説明。
	Description string `json:"description"`
	// Notes は補足メモ。
	Notes string `json:"notes"`
	// Color はカレンダー表示色（大文字の色名またはカラーコード）。
	Color string `json:"color"`
	// StartTime は開始日時（RFC3339形式）。
	StartTime string `json:"start_time"`
	// EndTime は終了日時（RFC3339形式）。
	EndTime string `json:"end_time"`
	// CreatedAt は作成日時（RFC3339形式）。
	CreatedAt string `json:"created_at"`
}

// toScheduleResponse はDB行をJSONレスポンスに変換する。
func toScheduleResponse(sc teamhubdb.Schedule) scheduleResponse {
	return scheduleResponse{
		ScheduleID:  sc.ScheduleID,
		UserID:      sc.UserID,
		TeamID:      sc.TeamID,
		Title:       sc.Title,
		Description: sc.Description,
		Notes:       sc.Notes,
		Color:       sc.Color,
		StartTime:   sc.StartTime.UTC().Format(time.RFC3339),
		EndTime:     sc.EndTime.UTC().Format(time.RFC3339),
		CreatedAt:   sc.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toHubSchedule はDB行をWebSocket通知用のペイロードに変換する。
func toHubSchedule(sc teamhubdb.Schedule) hub.Schedule {
	return hub.Schedule{
		ScheduleID:  sc.ScheduleID,
		UserID:      sc.UserID,
		TeamID:      sc.TeamID,
		Title:       sc.Title,
		Description: sc.Description,
		Notes:       sc.Notes,
		Color:       sc.Color,
		StartTime:   sc.StartTime.UTC().Format(time.RFC3339),
		EndTime:     sc.EndTime.UTC().Format(time.RFC3339),
	}
}

// scheduleRequest は予定の作成・更新リクエストのJSON構造。
type scheduleRequest struct {
	// Title は予定のタイトル。
	Title string `json:"title" binding:"required"`
	// Description は予定の説明。
	Description string `json:"description"`
	// Notes は補足メモ。
	Notes string `json:"notes"`
	// Color はカレンダー表示色。保存時に大文字へ正規化される。
	Color string `json:"color"`
	// StartTime は開始日時（RFC3339形式）。
	StartTime time.Time `json:"start_time" binding:"required"`
	// EndTime は終了日時（RFC3339形式）。
	EndTime time.Time `json:"end_time" binding:"required"`
}

// handleCreateSchedule はチームの予定を作成するハンドラ。
// 保存後にチームルームへscheduleAddedを通知する。
func (s *Server) handleCreateSchedule() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req scheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if !req.EndTime.After(req.StartTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "終了日時は開始日時より後である必要があります"})
			return
		}

		teamID := middleware.GetTeamID(c)
		schedule, err := s.queries.CreateSchedule(c.Request.Context(), teamhubdb.CreateScheduleParams{
			ScheduleID:  uuid.New().String(),
			UserID:      middleware.GetUserID(c),
			TeamID:      teamID,
			Title:       req.Title,
			Description: req.Description,
			Notes:       req.Notes,
			Color:       strings.ToUpper(req.Color),
			StartTime:   req.StartTime.UTC(),
			EndTime:     req.EndTime.UTC(),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "予定の作成に失敗しました"})
			log.Printf("予定作成エラー: %v", err)
			return
		}

		s.hub.Emit(hub.TeamRoom(teamID), &hub.ScheduleAdded{
			Message:  "新しい予定が追加されました",
			Schedule: toHubSchedule(schedule),
		})

		c.JSON(http.StatusCreated, toScheduleResponse(schedule))
	}
}

// handleListSchedules はチームの全予定を開始日時順で返すハンドラ。
func (s *Server) handleListSchedules() gin.HandlerFunc {
	return func(c *gin.Context) {
		schedules, err := s.queries.ListSchedulesByTeam(c.Request.Context(), middleware.GetTeamID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "予定一覧の取得に失敗しました"})
			log.Printf("予定一覧取得エラー: %v", err)
			return
		}

		responses := make([]scheduleResponse, 0, len(schedules))
		for _, sc := range schedules {
			responses = append(responses, toScheduleResponse(sc))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// monthScheduleResponse はタスク進捗付きの予定のJSONレスポンス構造。
type monthScheduleResponse struct {
	scheduleResponse
	// TotalTasks は予定に紐づくタスクの総数。
	TotalTasks int64 `json:"total_tasks"`
	// CompletedTasks は完了済みタスクの数。
	CompletedTasks int64 `json:"completed_tasks"`
}

// handleListSchedulesByMonth は指定月の予定をタスク進捗付きで返すハンドラ。
// カレンダーの月表示が前後の月の日を含むため、検索範囲は月初の7日前から
// 翌月7日までに広げる。
func (s *Server) handleListSchedulesByMonth() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "yearパラメータが不正です"})
			return
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "monthパラメータが不正です"})
			return
		}

		monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		searchStart := monthStart.AddDate(0, 0, -7)
		searchEnd := monthStart.AddDate(0, 1, 6)

		rows, err := s.queries.ListSchedulesWithProgress(c.Request.Context(), teamhubdb.ListSchedulesWithProgressParams{
			TeamID:    middleware.GetTeamID(c),
			EndTime:   searchStart,
			StartTime: searchEnd,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "予定一覧の取得に失敗しました"})
			log.Printf("月間予定取得エラー: %v", err)
			return
		}

		responses := make([]monthScheduleResponse, 0, len(rows))
		for _, row := range rows {
			responses = append(responses, monthScheduleResponse{
				scheduleResponse: toScheduleResponse(teamhubdb.Schedule{
					ScheduleID:  row.ScheduleID,
					UserID:      row.UserID,
					TeamID:      row.TeamID,
					Title:       row.Title,
					Description: row.Description,
					Notes:       row.Notes,
					Color:       row.Color,
					StartTime:   row.StartTime,
					EndTime:     row.EndTime,
					CreatedAt:   row.CreatedAt,
				}),
				TotalTasks:     row.TotalTasks,
				CompletedTasks: row.CompletedTasks,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

// getTeamSchedule は予定を取得し、認証済みユーザーのチームに属することを確認する。
// 確認に失敗した場合はレスポンスを書き込みfalseを返す。
func (s *Server) getTeamSchedule(c *gin.Context, scheduleID string) (teamhubdb.Schedule, bool) {
	schedule, err := s.queries.GetScheduleByID(c.Request.Context(), scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "予定が見つかりません"})
			return teamhubdb.Schedule{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "予定の取得に失敗しました"})
		log.Printf("予定取得エラー: %v", err)
		return teamhubdb.Schedule{}, false
	}
	if schedule.TeamID != middleware.GetTeamID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "予定が見つかりません"})
		return teamhubdb.Schedule{}, false
	}
	return schedule, true
}

// handleUpdateSchedule は予定を更新するハンドラ。
// 更新後にチームルームへscheduleUpdatedを通知する。
func (s *Server) handleUpdateSchedule() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheduleID := c.Param("scheduleId")
		if _, ok := s.getTeamSchedule(c, scheduleID); !ok {
			return
		}

		var req scheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if !req.EndTime.After(req.StartTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "終了日時は開始日時より後である必要があります"})
			return
		}

		schedule, err := s.queries.UpdateSchedule(c.Request.Context(), teamhubdb.UpdateScheduleParams{
			Title:       req.Title,
			Description: req.Description,
			Notes:       req.Notes,
			StartTime:   req.StartTime.UTC(),
			EndTime:     req.EndTime.UTC(),
			Color:       strings.ToUpper(req.Color),
			ScheduleID:  scheduleID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "予定の更新に失敗しました"})
			log.Printf("予定更新エラー: %v", err)
			return
		}

		s.hub.Emit(hub.TeamRoom(schedule.TeamID), &hub.ScheduleUpdated{
			Message:  "予定が更新されました",
			Schedule: toHubSchedule(schedule),
		})

		c.JSON(http.StatusOK, toScheduleResponse(schedule))
	}
}

// handleDeleteSchedule は予定とその配下のタスクを削除するハンドラ。
// 削除後にチームルームへscheduleRemovedを通知する。
func (s *Server) handleDeleteSchedule() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheduleID := c.Param("scheduleId")
		schedule, ok := s.getTeamSchedule(c, scheduleID)
		if !ok {
			return
		}

		tx, err := s.db.BeginTx(c.Request.Context(), nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "予定の削除に失敗しました"})
			log.Printf("トランザクション開始エラー: %v", err)
			return
		}
		defer func() { _ = tx.Rollback() }()

		qtx := s.queries.WithTx(tx)
		if err := qtx.DeleteTasksBySchedule(c.Request.Context(), scheduleID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "予定の削除に失敗しました"})
			log.Printf("タスク削除エラー: %v", err)
			return
		}
		if _, err := qtx.DeleteSchedule(c.Request.Context(), scheduleID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "予定の削除に失敗しました"})
			log.Printf("予定削除エラー: %v", err)
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "予定の削除に失敗しました"})
			log.Printf("トランザクションコミットエラー: %v", err)
			return
		}

		s.hub.Emit(hub.TeamRoom(schedule.TeamID), &hub.ScheduleRemoved{
			Message:    "予定が削除されました",
			ScheduleID: scheduleID,
		})

		c.JSON(http.StatusOK, gin.H{"message": "予定を削除しました"})
	}
}

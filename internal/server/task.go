package server

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/teamhub/internal/hub"
	teamhubdb "github.com/nao1215/teamhub/internal/server/db"
)

// taskResponse はタスクのJSONレスポンス構造。
type taskResponse struct {
	// TaskID はタスクの一意識別子。
	TaskID string `json:"task_id"`
	// ScheduleID はタスクが属する予定のID。
	ScheduleID string `json:"schedule_id"`
	// Title はタスクのタイトル。
	Title string `json:"title"`
	// ManagerID は担当者のユーザーID。未割り当ての場合は空文字列。
	ManagerID string `json:"manager_id"`
	// DueDate は期限（RFC3339形式）。期限なしの場合は空文字列。
	DueDate string `json:"due_date"`
	// IsCompleted はタスクの完了状態。
	IsCompleted bool `json:"is_completed"`
	// CreatedAt は作成日時（RFC3339形式）。
	CreatedAt string `json:"created_at"`
}

// toTaskResponse はDB行をJSONレスポンスに変換する。
func toTaskResponse(t teamhubdb.Task) taskResponse {
	dueDate := ""
	if t.DueDate.Valid {
		dueDate = t.DueDate.Time.UTC().Format(time.RFC3339)
	}
	return taskResponse{
		TaskID:      t.TaskID,
		ScheduleID:  t.ScheduleID,
		Title:       t.Title,
		ManagerID:   t.ManagerID.String,
		DueDate:     dueDate,
		IsCompleted: t.IsCompleted != 0,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// createTaskRequest はタスク作成リクエストのJSON構造。
type createTaskRequest struct {
	// Title はタスクのタイトル。
	Title string `json:"title" binding:"required"`
	// ManagerID は担当者のユーザーID。省略可能。
	ManagerID string `json:"managerId"`
	// DueDate は期限（RFC3339形式）。省略可能。
	DueDate *time.Time `json:"due_date"`
}

// handleCreateTask は予定にタスクを追加するハンドラ。
// 保存後にチームルームへcreateTaskを通知する。
func (s *Server) handleCreateTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		schedule, ok := s.getTeamSchedule(c, c.Param("scheduleId"))
		if !ok {
			return
		}

		var req createTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		dueDate := sql.NullTime{}
		if req.DueDate != nil {
			dueDate = sql.NullTime{Time: req.DueDate.UTC(), Valid: true}
		}

		task, err := s.queries.CreateTask(c.Request.Context(), teamhubdb.CreateTaskParams{
			TaskID:     uuid.New().String(),
			ScheduleID: schedule.ScheduleID,
			Title:      req.Title,
			ManagerID:  nullString(req.ManagerID),
			DueDate:    dueDate,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "タスクの作成に失敗しました"})
			log.Printf("タスク作成エラー: %v", err)
			return
		}

		resp := toTaskResponse(task)
		s.hub.Emit(hub.TeamRoom(schedule.TeamID), &hub.TaskCreated{
			Message:    "新しいタスクが追加されました",
			ScheduleID: task.ScheduleID,
			TaskID:     task.TaskID,
			Title:      task.Title,
			ManagerID:  resp.ManagerID,
			DueDate:    resp.DueDate,
		})

		c.JSON(http.StatusCreated, resp)
	}
}

// handleListTasks は予定に紐づくタスク一覧を作成日時順で返すハンドラ。
func (s *Server) handleListTasks() gin.HandlerFunc {
	return func(c *gin.Context) {
		schedule, ok := s.getTeamSchedule(c, c.Param("scheduleId"))
		if !ok {
			return
		}

		tasks, err := s.queries.ListTasksBySchedule(c.Request.Context(), schedule.ScheduleID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "タスク一覧の取得に失敗しました"})
			log.Printf("タスク一覧取得エラー: %v", err)
			return
		}

		responses := make([]taskResponse, 0, len(tasks))
		for _, t := range tasks {
			responses = append(responses, toTaskResponse(t))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// getTeamTask はタスクを取得し、認証済みユーザーのチームに属することを確認する。
// 確認に失敗した場合はレスポンスを書き込みfalseを返す。
func (s *Server) getTeamTask(c *gin.Context, taskID string) (teamhubdb.Task, teamhubdb.Schedule, bool) {
	task, err := s.queries.GetTaskByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "タスクが見つかりません"})
			return teamhubdb.Task{}, teamhubdb.Schedule{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タスクの取得に失敗しました"})
		log.Printf("タスク取得エラー: %v", err)
		return teamhubdb.Task{}, teamhubdb.Schedule{}, false
	}

	schedule, ok := s.getTeamSchedule(c, task.ScheduleID)
	if !ok {
		return teamhubdb.Task{}, teamhubdb.Schedule{}, false
	}
	return task, schedule, true
}

// completeTaskRequest はタスク完了状態の変更リクエストのJSON構造。
type completeTaskRequest struct {
	// IsCompleted は新しい完了状態。
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}

// handleCompleteTask はタスクの完了状態を変更するハンドラ。
// 変更後にチームルームへisTaskCompletedChangedを通知する。
func (s *Server) handleCompleteTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, schedule, ok := s.getTeamTask(c, c.Param("taskId"))
		if !ok {
			return
		}

		var req completeTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		isCompleted := int64(0)
		if *req.IsCompleted {
			isCompleted = 1
		}

		task, err := s.queries.UpdateTaskCompletion(c.Request.Context(), teamhubdb.UpdateTaskCompletionParams{
			IsCompleted: isCompleted,
			TaskID:      c.Param("taskId"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "タスクの更新に失敗しました"})
			log.Printf("タスク更新エラー: %v", err)
			return
		}

		s.hub.Emit(hub.TeamRoom(schedule.TeamID), &hub.TaskCompletionChanged{
			Message:     "タスクの完了状態が変更されました",
			TaskID:      task.TaskID,
			IsCompleted: task.IsCompleted != 0,
		})

		c.JSON(http.StatusOK, toTaskResponse(task))
	}
}

// handleDeleteTask はタスクを削除するハンドラ。
// 削除後にチームルームへdeleteTaskを通知する。
func (s *Server) handleDeleteTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		task, schedule, ok := s.getTeamTask(c, c.Param("taskId"))
		if !ok {
			return
		}

		if _, err := s.queries.DeleteTask(c.Request.Context(), task.TaskID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "タスクの削除に失敗しました"})
			log.Printf("タスク削除エラー: %v", err)
			return
		}

		s.hub.Emit(hub.TeamRoom(schedule.TeamID), &hub.TaskDeleted{
			Message: "タスクが削除されました",
			TaskID:  task.TaskID,
		})

		c.JSON(http.StatusOK, gin.H{"message": "タスクを削除しました"})
	}
}

package views

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/GrainArc/ContourMap/response"
	"github.com/GrainArc/ContourMap/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ProgressUpdate 进度更新消息
type ProgressUpdate struct {
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
	Status   string  `json:"status"`
}

// ContourTask 异步等高线生成任务
type ContourTask struct {
	TaskID    string     `json:"task_id"`
	Status    string     `json:"status"` // pending, running, completed, failed
	Progress  float64    `json:"progress"`
	Message   string     `json:"message"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Error     string     `json:"error,omitempty"`

	// 内部使用
	request     *services.GenerateRequest
	result      *services.GenerateResponse
	mu          sync.RWMutex
	subscribers map[string]chan ProgressUpdate
}

// ContourTaskManager 等高线任务管理器
type ContourTaskManager struct {
	tasks map[string]*ContourTask
	mu    sync.RWMutex
}

// 全局等高线任务管理器
var contourTaskManager = &ContourTaskManager{
	tasks: make(map[string]*ContourTask),
}

// AddTask 添加任务
func (tm *ContourTaskManager) AddTask(task *ContourTask) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.tasks[task.TaskID] = task
}

// GetTask 获取任务
func (tm *ContourTaskManager) GetTask(taskID string) (*ContourTask, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	task, ok := tm.tasks[taskID]
	return task, ok
}

// RemoveTask 移除任务
func (tm *ContourTaskManager) RemoveTask(taskID string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	delete(tm.tasks, taskID)
}

// WebSocket升级器
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 生产环境需要更严格的检查
	},
}

// StartContourTask 启动异步等高线生成任务
func (h *ContourHandler) StartContourTask(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数格式错误: "+err.Error())
		return
	}

	task := &ContourTask{
		TaskID:      uuid.New().String(),
		Status:      "pending",
		Progress:    0,
		Message:     "任务已创建",
		StartTime:   time.Now(),
		request:     &req,
		subscribers: make(map[string]chan ProgressUpdate),
	}
	contourTaskManager.AddTask(task)

	// 异步执行生成，计算本身仍是同步纯函数
	go executeContourTask(h.service, task)

	response.SuccessWithMessage(c, "任务已启动", gin.H{
		"task_id": task.TaskID,
	})
}

// GetContourTaskStatus 获取任务状态
func (h *ContourHandler) GetContourTaskStatus(c *gin.Context) {
	taskID := c.Param("taskId")

	task, ok := contourTaskManager.GetTask(taskID)
	if !ok {
		response.NotFound(c, "任务不存在")
		return
	}

	task.mu.RLock()
	defer task.mu.RUnlock()

	data := gin.H{
		"task_id":    task.TaskID,
		"status":     task.Status,
		"progress":   task.Progress,
		"message":    task.Message,
		"start_time": task.StartTime,
	}
	if task.EndTime != nil {
		data["end_time"] = task.EndTime
		data["duration"] = task.EndTime.Sub(task.StartTime).String()
	}
	if task.Error != "" {
		data["error"] = task.Error
	}
	if task.Status == "completed" && task.result != nil {
		data["result"] = task.result
	}

	response.Success(c, data)
}

// ContourTaskWebSocket WebSocket连接处理，推送任务进度
func (h *ContourHandler) ContourTaskWebSocket(c *gin.Context) {
	taskID := c.Param("taskId")

	task, ok := contourTaskManager.GetTask(taskID)
	if !ok {
		response.NotFound(c, "任务不存在")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// 注册订阅者
	subscriberID := uuid.New().String()
	progressChan := make(chan ProgressUpdate, 100)
	task.mu.Lock()
	task.subscribers[subscriberID] = progressChan
	task.mu.Unlock()

	// 确保退出时清理订阅
	defer func() {
		task.mu.Lock()
		delete(task.subscribers, subscriberID)
		close(progressChan)
		task.mu.Unlock()
	}()

	// 发送当前状态
	task.mu.RLock()
	current := ProgressUpdate{
		Progress: task.Progress,
		Message:  task.Message,
		Status:   task.Status,
	}
	task.mu.RUnlock()
	if err := conn.WriteJSON(current); err != nil {
		log.Printf("Error sending initial status: %v", err)
		return
	}

	// 读取客户端消息的goroutine（用于检测连接断开）
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// 推送进度更新
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				log.Printf("Error sending progress update: %v", err)
				return
			}
			if update.Status == "completed" || update.Status == "failed" {
				time.Sleep(time.Second) // 给客户端一点时间接收消息
				return
			}
		case <-done:
			return
		}
	}
}

// executeContourTask 执行等高线生成任务
func executeContourTask(svc *services.ContourService, task *ContourTask) {
	updateContourTaskStatus(task, "running", 0, "开始生成等高线")

	progress := func(done, total int, message string) {
		ratio := 0.0
		if total > 0 {
			ratio = float64(done) / float64(total)
		}
		updateContourTaskStatus(task, "running", ratio, message)
	}

	result, err := svc.Generate(task.request, progress)

	endTime := time.Now()
	task.mu.Lock()
	task.EndTime = &endTime
	task.mu.Unlock()

	if err != nil {
		task.mu.Lock()
		task.Status = "failed"
		task.Error = err.Error()
		failedAt := task.Progress
		task.mu.Unlock()

		broadcastContourUpdate(task, ProgressUpdate{
			Progress: failedAt,
			Message:  fmt.Sprintf("任务失败: %v", err),
			Status:   "failed",
		})
		return
	}

	task.mu.Lock()
	task.result = result
	task.mu.Unlock()

	svc.SaveRecord(task.TaskID, "grid", task.request, result)
	updateContourTaskStatus(task, "completed", 1.0, "等高线生成完成")
}

// updateContourTaskStatus 更新任务状态并广播
func updateContourTaskStatus(task *ContourTask, status string, progress float64, message string) {
	task.mu.Lock()
	task.Status = status
	task.Progress = progress
	task.Message = message
	task.mu.Unlock()

	broadcastContourUpdate(task, ProgressUpdate{
		Progress: progress,
		Message:  message,
		Status:   status,
	})
}

// broadcastContourUpdate 广播进度更新到所有订阅者
func broadcastContourUpdate(task *ContourTask, update ProgressUpdate) {
	task.mu.RLock()
	defer task.mu.RUnlock()

	for _, ch := range task.subscribers {
		select {
		case ch <- update:
		default:
			// 通道已满，跳过
		}
	}
}

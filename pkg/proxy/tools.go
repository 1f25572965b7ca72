package proxy

import (
	"context"
)

// Coordinator tool names understood by the backend
const (
	ToolCreateHumanTask  = "coordinator_create_human_task"
	ToolCreateAgentTask  = "coordinator_create_agent_task"
	ToolListHumanTasks   = "coordinator_list_human_tasks"
	ToolListAgentTasks   = "coordinator_list_agent_tasks"
	ToolUpdateTaskStatus = "coordinator_update_task_status"
	ToolUpsertKnowledge  = "coordinator_upsert_knowledge"
	ToolQueryKnowledge   = "coordinator_query_knowledge"
)

// TodoItem is the structured todo shape the backend accepts. Todos may also be plain
// strings, the older form; both are forwarded unchanged.
type TodoItem struct {
	Description  string `json:"description"`
	FilePath     string `json:"filePath,omitempty"`
	FunctionName string `json:"functionName,omitempty"`
	ContextHint  string `json:"contextHint,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// AgentTaskRequest describes an agent task to create under a human task
type AgentTaskRequest struct {
	HumanTaskID    string             `json:"humanTaskId"`
	AgentName      string             `json:"agentName"`
	Role           string             `json:"role"`
	ContextSummary Optional[string]   `json:"contextSummary"`
	FilesModified  Optional[[]string] `json:"filesModified"`
	Todos          Optional[[]any]    `json:"todos"`
}

// CreateHumanTask records a new task on behalf of the user
func (c *Client) CreateHumanTask(ctx context.Context, prompt string) (any, error) {
	args := NewArguments().Set("prompt", prompt)
	return c.CallTool(ctx, ToolCreateHumanTask, args)
}

// CreateAgentTask creates an agent task. Absent optional fields are omitted.
func (c *Client) CreateAgentTask(ctx context.Context, req AgentTaskRequest) (any, error) {
	args := NewArguments().
		Set("humanTaskId", req.HumanTaskID).
		Set("agentName", req.AgentName).
		Set("role", req.Role)
	SetOptional(args, "contextSummary", req.ContextSummary)
	SetOptional(args, "filesModified", req.FilesModified)
	SetOptional(args, "todos", req.Todos)

	return c.CallTool(ctx, ToolCreateAgentTask, args)
}

// ListHumanTasks lists all human tasks
func (c *Client) ListHumanTasks(ctx context.Context) (any, error) {
	return c.CallTool(ctx, ToolListHumanTasks, NewArguments())
}

// ListAgentTasks lists agent tasks, optionally filtered by agent and human task
func (c *Client) ListAgentTasks(ctx context.Context, agentName, humanTaskID Optional[string]) (any, error) {
	args := NewArguments()
	SetOptional(args, "agentName", agentName)
	SetOptional(args, "humanTaskId", humanTaskID)

	return c.CallTool(ctx, ToolListAgentTasks, args)
}

// UpdateTaskStatus moves a task to a new status
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID, status string, notes Optional[string]) (any, error) {
	args := NewArguments().
		Set("taskId", taskID).
		Set("status", status)
	SetOptional(args, "notes", notes)

	return c.CallTool(ctx, ToolUpdateTaskStatus, args)
}

// UpsertKnowledge stores text in a knowledge collection
func (c *Client) UpsertKnowledge(ctx context.Context, collection, text string, metadata Optional[any]) (any, error) {
	args := NewArguments().
		Set("collection", collection).
		Set("text", text)
	SetOptional(args, "metadata", metadata)

	return c.CallTool(ctx, ToolUpsertKnowledge, args)
}

// QueryKnowledge searches a knowledge collection
func (c *Client) QueryKnowledge(ctx context.Context, collection, query string, limit Optional[int]) (any, error) {
	args := NewArguments().
		Set("collection", collection).
		Set("query", query)
	SetOptional(args, "limit", limit)

	return c.CallTool(ctx, ToolQueryKnowledge, args)
}

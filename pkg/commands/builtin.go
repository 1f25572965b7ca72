package commands

import (
	"context"

	"github.com/hyperion/hypershell/pkg/health"
	"github.com/hyperion/hypershell/pkg/proxy"
)

// Command names exposed to the UI
const (
	GetServerURL      = "get_server_url"
	CheckServerHealth = "check_server_health"
	CallMCPTool       = "call_mcp_tool"
	CreateHumanTask   = "create_human_task"
	CreateAgentTask   = "create_agent_task"
	ListHumanTasks    = "list_human_tasks"
	ListAgentTasks    = "list_agent_tasks"
	UpdateTaskStatus  = "update_task_status"
	UpsertKnowledge   = "upsert_knowledge"
	QueryKnowledge    = "query_knowledge"
)

// Proxy is the subset of the tool client the commands forward to
type Proxy interface {
	ServerURL() string
	CallTool(ctx context.Context, name string, args proxy.Arguments) (any, error)
	CreateHumanTask(ctx context.Context, prompt string) (any, error)
	CreateAgentTask(ctx context.Context, req proxy.AgentTaskRequest) (any, error)
	ListHumanTasks(ctx context.Context) (any, error)
	ListAgentTasks(ctx context.Context, agentName, humanTaskID proxy.Optional[string]) (any, error)
	UpdateTaskStatus(ctx context.Context, taskID, status string, notes proxy.Optional[string]) (any, error)
	UpsertKnowledge(ctx context.Context, collection, text string, metadata proxy.Optional[any]) (any, error)
	QueryKnowledge(ctx context.Context, collection, query string, limit proxy.Optional[int]) (any, error)
}

// Deps are the components the built-in commands use
type Deps struct {
	Proxy  Proxy
	Health health.Checker
}

type callToolArgs struct {
	Name      string          `json:"name"`
	Arguments proxy.Arguments `json:"arguments"`
}

func (*callToolArgs) requiredArgs() []string {
	return []string{"name"}
}

type createHumanTaskArgs struct {
	Prompt string `json:"prompt"`
}

func (*createHumanTaskArgs) requiredArgs() []string {
	return []string{"prompt"}
}

type createAgentTaskArgs proxy.AgentTaskRequest

func (*createAgentTaskArgs) requiredArgs() []string {
	return []string{"humanTaskId", "agentName", "role"}
}

type listAgentTasksArgs struct {
	AgentName   proxy.Optional[string] `json:"agentName"`
	HumanTaskID proxy.Optional[string] `json:"humanTaskId"`
}

type updateTaskStatusArgs struct {
	TaskID string                 `json:"taskId"`
	Status string                 `json:"status"`
	Notes  proxy.Optional[string] `json:"notes"`
}

func (*updateTaskStatusArgs) requiredArgs() []string {
	return []string{"taskId", "status"}
}

type upsertKnowledgeArgs struct {
	Collection string              `json:"collection"`
	Text       string              `json:"text"`
	Metadata   proxy.Optional[any] `json:"metadata"`
}

func (*upsertKnowledgeArgs) requiredArgs() []string {
	return []string{"collection", "text"}
}

type queryKnowledgeArgs struct {
	Collection string              `json:"collection"`
	Query      string              `json:"query"`
	Limit      proxy.Optional[int] `json:"limit"`
}

func (*queryKnowledgeArgs) requiredArgs() []string {
	return []string{"collection", "query"}
}

// Register installs the built-in commands
func Register(reg *Registry, deps Deps) {
	p := deps.Proxy

	reg.Handle(GetServerURL, NoArgs(func(ctx context.Context) (any, error) {
		return p.ServerURL(), nil
	}))

	reg.Handle(CheckServerHealth, NoArgs(func(ctx context.Context) (any, error) {
		return deps.Health.Check(ctx)
	}))

	reg.Handle(CallMCPTool, Typed(CallMCPTool, func(ctx context.Context, a callToolArgs) (any, error) {
		return p.CallTool(ctx, a.Name, a.Arguments)
	}))

	reg.Handle(CreateHumanTask, Typed(CreateHumanTask, func(ctx context.Context, a createHumanTaskArgs) (any, error) {
		return p.CreateHumanTask(ctx, a.Prompt)
	}))

	reg.Handle(CreateAgentTask, Typed(CreateAgentTask, func(ctx context.Context, a createAgentTaskArgs) (any, error) {
		return p.CreateAgentTask(ctx, proxy.AgentTaskRequest(a))
	}))

	reg.Handle(ListHumanTasks, NoArgs(func(ctx context.Context) (any, error) {
		return p.ListHumanTasks(ctx)
	}))

	reg.Handle(ListAgentTasks, Typed(ListAgentTasks, func(ctx context.Context, a listAgentTasksArgs) (any, error) {
		return p.ListAgentTasks(ctx, a.AgentName, a.HumanTaskID)
	}))

	reg.Handle(UpdateTaskStatus, Typed(UpdateTaskStatus, func(ctx context.Context, a updateTaskStatusArgs) (any, error) {
		return p.UpdateTaskStatus(ctx, a.TaskID, a.Status, a.Notes)
	}))

	reg.Handle(UpsertKnowledge, Typed(UpsertKnowledge, func(ctx context.Context, a upsertKnowledgeArgs) (any, error) {
		return p.UpsertKnowledge(ctx, a.Collection, a.Text, a.Metadata)
	}))

	reg.Handle(QueryKnowledge, Typed(QueryKnowledge, func(ctx context.Context, a queryKnowledgeArgs) (any, error) {
		return p.QueryKnowledge(ctx, a.Collection, a.Query, a.Limit)
	}))
}

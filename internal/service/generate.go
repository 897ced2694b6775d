package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/queryforge/internal/llm"
	"github.com/leapstack-labs/queryforge/internal/prompt"
	"github.com/leapstack-labs/queryforge/pkg/core"
)

// complete sends p to model and fills the usage, cost and timing fields of e.
// e.Status is set from the outcome.
func (s *Service) complete(ctx context.Context, model string, p prompt.Prompt, start time.Time, e *core.AuditEvent) (*llm.Completion, error) {
	e.ModelID = model
	resp, err := s.router.Complete(ctx, llm.Request{
		Model:       model,
		System:      p.System,
		User:        p.User,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})
	e.ExecutionTimeMS = s.elapsedMS(start)
	if err != nil {
		e.Status = core.StatusError
		e.ErrorMessage = err.Error()
		return nil, err
	}

	u := resp.Usage
	e.SetUsage(u, s.router.Catalog().EstimateCost(model, u.PromptTokens, u.CompletionTokens))
	e.Status = core.StatusSuccess
	return resp, nil
}

func (s *Service) modelOrDefault(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.router.DefaultModel()
}

func qualifiedNames(tables []core.TableSelection) string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.QualifiedName()
	}
	return strings.Join(names, ",")
}

// SuggestBusinessLogic asks the model for analytical questions about a table.
func (s *Service) SuggestBusinessLogic(ctx context.Context, attr Attribution, req SuggestionRequest) (*SuggestionResponse, error) {
	primary := req.Selection()
	if err := validateTable("table", primary); err != nil {
		return nil, err
	}
	additional := make([]core.TableSelection, 0, len(req.AdditionalTables))
	for i, t := range req.AdditionalTables {
		sel := t.Selection()
		if err := validateTable(fmt.Sprintf("additional_tables[%d]", i), sel); err != nil {
			return nil, err
		}
		additional = append(additional, sel)
	}

	model := s.modelOrDefault(req.ModelID)
	start := s.now()

	var metadata map[string]string
	if len(additional) > 0 {
		metadata = map[string]string{
			"additional_tables": qualifiedNames(additional),
		}
	}
	s.startSession(ctx, attr, primary, metadata)

	event := &core.AuditEvent{
		EventType: core.EventBusinessLogicSuggestion,
		Columns:   primary.Columns,
		Metadata:  metadata,
	}
	event.SetTable(primary.TableRef)

	resp, err := s.complete(ctx, model, prompt.BusinessLogicSuggestion(primary, additional), start, event)
	if err != nil {
		s.record(ctx, attr, event)
		s.logger.Error("failed to generate business logic suggestions", "model", model, "error", err)
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}

	suggestions := prompt.ParseSuggestions(resp.Text)
	if encoded, err := json.Marshal(suggestions); err == nil {
		event.BusinessLogic = string(encoded)
	}
	s.record(ctx, attr, event)

	s.logger.Info("business logic suggested", "model", model, "count", len(suggestions),
		"tokens", resp.Usage.TotalTokens)
	return &SuggestionResponse{Suggestions: suggestions, ModelUsed: model}, nil
}

// SuggestJoinConditions asks the model how two or more tables relate.
func (s *Service) SuggestJoinConditions(ctx context.Context, attr Attribution, req JoinRequest) (*JoinResponse, error) {
	if len(req.Tables) < 2 {
		return nil, invalid("tables", "at least two tables are required")
	}
	tables := make([]core.TableSelection, len(req.Tables))
	for i, t := range req.Tables {
		tables[i] = t.Selection()
		if err := validateTable(fmt.Sprintf("tables[%d]", i), tables[i]); err != nil {
			return nil, err
		}
	}

	model := s.modelOrDefault(req.ModelID)
	start := s.now()
	metadata := map[string]string{"tables": qualifiedNames(tables)}
	s.startSession(ctx, attr, tables[0], metadata)

	event := &core.AuditEvent{
		EventType: core.EventJoinConditionSuggestion,
		Columns:   tables[0].Columns,
		Metadata:  metadata,
	}
	event.SetTable(tables[0].TableRef)

	resp, err := s.complete(ctx, model, prompt.JoinConditions(tables), start, event)
	if err != nil {
		s.record(ctx, attr, event)
		s.logger.Error("failed to suggest join conditions", "model", model, "error", err)
		return nil, fmt.Errorf("failed to suggest join conditions: %w", err)
	}

	condition := prompt.ParseJoinCondition(resp.Text)
	event.GeneratedSQL = condition
	s.record(ctx, attr, event)

	return &JoinResponse{JoinCondition: condition, ModelUsed: model}, nil
}

// GenerateSQL asks the model for a query over one or more tables.
func (s *Service) GenerateSQL(ctx context.Context, attr Attribution, req GenerateSQLRequest) (*GenerateSQLResponse, error) {
	tables := req.selections()
	if len(tables) == 0 {
		return nil, invalid("tables", "a table is required")
	}
	for i, t := range tables {
		if err := validateTable(fmt.Sprintf("tables[%d]", i), t); err != nil {
			return nil, err
		}
	}
	businessLogic := strings.TrimSpace(req.BusinessLogic)
	if businessLogic == "" {
		return nil, invalid("business_logic", "is required")
	}

	model := s.modelOrDefault(req.ModelID)
	start := s.now()

	var metadata map[string]string
	if len(tables) > 1 {
		metadata = map[string]string{
			"tables":      qualifiedNames(tables),
			"table_count": strconv.Itoa(len(tables)),
		}
		if jc := strings.TrimSpace(req.JoinConditions); jc != "" {
			metadata["join_conditions"] = jc
		}
	}
	s.startSession(ctx, attr, tables[0], metadata)

	event := &core.AuditEvent{
		EventType:     core.EventSQLGeneration,
		Columns:       tables[0].Columns,
		BusinessLogic: businessLogic,
		Metadata:      metadata,
	}
	event.SetTable(tables[0].TableRef)

	p := prompt.GenerateSQL(tables, businessLogic, strings.TrimSpace(req.JoinConditions))
	resp, err := s.complete(ctx, model, p, start, event)
	if err != nil {
		s.record(ctx, attr, event)
		s.logger.Error("failed to generate SQL", "model", model, "error", err)
		return nil, fmt.Errorf("failed to generate SQL: %w", err)
	}

	query, explanation := prompt.ParseSQL(resp.Text)
	event.GeneratedSQL = query
	s.record(ctx, attr, event)

	s.logger.Info("SQL generated", "model", model, "tables", len(tables), "tokens", resp.Usage.TotalTokens)
	return &GenerateSQLResponse{SQLQuery: query, Explanation: explanation, ModelUsed: model}, nil
}

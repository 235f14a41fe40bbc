// Package mcptools exposes the booking operations as MCP tools so assistants
// can book and search appointments over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"slotbook/cmd/internal/service"
	"slotbook/cmd/internal/utils/apierror"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

type AppointmentService interface {
	BookAppointment(ctx context.Context, req *service.AppointmentRequest) (*service.BookingResponse, apierror.ErrorResponse)
	GetAppointment(ctx context.Context, id int64) (*service.AppointmentResponse, apierror.ErrorResponse)
	FindSimilar(ctx context.Context, req *service.SimilarityRequest) (*service.SimilarityResponse, apierror.ErrorResponse)
}

type SuggestionService interface {
	Suggest(ctx context.Context, req *service.SuggestionRequest) (*service.SuggestionResponse, apierror.ErrorResponse)
}

type ToolDeps struct {
	Appointments AppointmentService
	Suggestions  SuggestionService
	Logger       *zap.Logger
}

// ErrorResponse is the body of a tool result flagged IsError.
type ErrorResponse struct {
	Error   bool              `json:"error"`
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewErrorResult(kind, message string, details map[string]string) *mcp.CallToolResult {
	jsonBytes, _ := json.Marshal(ErrorResponse{Error: true, Kind: kind, Message: message, Details: details})
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

func fromAPIError(apierr apierror.ErrorResponse) *mcp.CallToolResult {
	var details map[string]string
	if e, ok := apierr.(*apierror.APIError); ok {
		details = e.Details
	}
	return NewErrorResult(apierr.Kind(), apierr.Error(), details)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// RegisterTools adds every appointment tool to the MCP server.
func RegisterTools(s *server.MCPServer, deps *ToolDeps) {
	registerBookAppointment(s, deps)
	registerGetAppointment(s, deps)
	registerFindSimilar(s, deps)
	registerSuggestions(s, deps)
}

func registerBookAppointment(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"book_appointment",
		mcp.WithDescription("Book an appointment slot. Fails if the date and time are already taken."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date as YYYY-MM-DD")),
		mcp.WithString("time", mcp.Required(), mcp.Description("Zero-padded time as HH:MM or HH:MM:SS; 14:00 and 14:00:00 are different slots")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Who the appointment is for")),
		mcp.WithString("description", mcp.Required(), mcp.Description("What the appointment is about")),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args service.AppointmentRequest
		var err error
		if args.Date, err = req.RequireString("date"); err != nil {
			return NewErrorResult(apierror.KindMissingParam, err.Error(), nil), nil
		}
		if args.Time, err = req.RequireString("time"); err != nil {
			return NewErrorResult(apierror.KindMissingParam, err.Error(), nil), nil
		}
		if args.UserID, err = req.RequireString("user_id"); err != nil {
			return NewErrorResult(apierror.KindMissingParam, err.Error(), nil), nil
		}
		if args.Description, err = req.RequireString("description"); err != nil {
			return NewErrorResult(apierror.KindMissingParam, err.Error(), nil), nil
		}

		resp, apierr := deps.Appointments.BookAppointment(ctx, &args)
		if apierr != nil {
			deps.Logger.Debug("book_appointment rejected", zap.String("kind", apierr.Kind()))
			return fromAPIError(apierr), nil
		}
		return jsonResult(resp)
	})
}

func registerGetAppointment(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_appointment",
		mcp.WithDescription("Fetch one appointment by its id"),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Appointment id")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok, err := intArg(req, "id")
		if err != nil {
			return NewErrorResult(apierror.KindValidation, err.Error(), nil), nil
		}
		if !ok {
			return NewErrorResult(apierror.KindMissingParam, "missing required parameter 'id'", nil), nil
		}

		resp, apierr := deps.Appointments.GetAppointment(ctx, id)
		if apierr != nil {
			return fromAPIError(apierr), nil
		}
		return jsonResult(resp)
	})
}

func registerFindSimilar(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"find_similar_appointments",
		mcp.WithDescription("Find booked appointments whose description is closest to the query"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free text to compare against descriptions")),
		mcp.WithNumber("top_k", mcp.Description(fmt.Sprintf("Number of matches (default: %d, max: %d)", service.DefaultTopK, service.MaxTopK))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return NewErrorResult(apierror.KindMissingParam, err.Error(), nil), nil
		}

		args := service.SimilarityRequest{Query: query}
		topK, ok, err := intArg(req, "top_k")
		if err != nil {
			return NewErrorResult(apierror.KindValidation, err.Error(), nil), nil
		}
		if ok {
			if topK < 1 || topK > service.MaxTopK {
				return NewErrorResult(apierror.KindValidation,
					fmt.Sprintf("parameter 'top_k' must be between 1 and %d", service.MaxTopK), nil), nil
			}
			args.TopK = int(topK)
		}

		resp, apierr := deps.Appointments.FindSimilar(ctx, &args)
		if apierr != nil {
			return fromAPIError(apierr), nil
		}
		return jsonResult(resp)
	})
}

func registerSuggestions(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_appointment_suggestions",
		mcp.WithDescription("Ask the language model for appointment time suggestions"),
		mcp.WithString("query", mcp.Required(), mcp.Description("What the user is looking for")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return NewErrorResult(apierror.KindMissingParam, err.Error(), nil), nil
		}

		resp, apierr := deps.Suggestions.Suggest(ctx, &service.SuggestionRequest{Query: query})
		if apierr != nil {
			return fromAPIError(apierr), nil
		}
		return jsonResult(resp)
	})
}

// intArg reads an optional integer argument. JSON decodes numbers as
// float64, so fractional or out-of-range values are rejected rather than
// truncated. ok is false when the argument is absent.
func intArg(req mcp.CallToolRequest, name string) (value int64, ok bool, err error) {
	args, _ := req.Params.Arguments.(map[string]any)
	raw, present := args[name]
	if !present || raw == nil {
		return 0, false, nil
	}

	v, isNum := raw.(float64)
	if !isNum {
		return 0, false, fmt.Errorf("parameter '%s' must be a number, got %T", name, raw)
	}
	if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, false, fmt.Errorf("parameter '%s' must be an integer, got %v", name, v)
	}
	return int64(v), true, nil
}

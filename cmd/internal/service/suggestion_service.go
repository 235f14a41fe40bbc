package service

import (
	"context"
	"fmt"

	"slotbook/cmd/internal/utils"
	"slotbook/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const suggestionPrompt = "Based on the following user query, suggest appropriate appointment times " +
	"and provide helpful recommendations: %s"

// Completer sends one prompt to a hosted language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SuggestionCache is optional; a nil cache disables caching.
type SuggestionCache interface {
	Get(ctx context.Context, query string) (string, bool, error)
	Set(ctx context.Context, query, suggestion string) error
}

type SuggestionRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

type SuggestionResponse struct {
	Query       string `json:"query"`
	Suggestions string `json:"suggestions"`
	Cached      bool   `json:"cached"`
}

type DefaultSuggestionService struct {
	LLM      Completer
	Cache    SuggestionCache
	Validate *validator.Validate
	Logger   *zap.Logger
}

func NewSuggestionService(llm Completer, cache SuggestionCache, validate *validator.Validate, logger *zap.Logger) *DefaultSuggestionService {
	return &DefaultSuggestionService{
		LLM:      llm,
		Cache:    cache,
		Validate: validate,
		Logger:   logger.Named("suggestions"),
	}
}

// BuildSuggestionPrompt embeds the user's query in the fixed prompt template.
func BuildSuggestionPrompt(query string) string {
	return fmt.Sprintf(suggestionPrompt, query)
}

// Suggest asks the model for scheduling suggestions. Failures are returned
// as-is without retrying.
func (s *DefaultSuggestionService) Suggest(ctx context.Context, req *SuggestionRequest) (*SuggestionResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	if s.Cache != nil {
		cached, ok, err := s.Cache.Get(ctx, req.Query)
		if err != nil {
			s.Logger.Warn("Suggestion cache read failed", zap.Error(err))
		} else if ok {
			return &SuggestionResponse{Query: req.Query, Suggestions: cached, Cached: true}, nil
		}
	}

	text, err := s.LLM.Complete(ctx, BuildSuggestionPrompt(req.Query))
	if err != nil {
		s.Logger.Error("Suggestion request failed", zap.Error(err))
		return nil, apierror.NewSuggestionError(err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, req.Query, text); err != nil {
			s.Logger.Warn("Suggestion cache write failed", zap.Error(err))
		}
	}
	return &SuggestionResponse{Query: req.Query, Suggestions: text}, nil
}

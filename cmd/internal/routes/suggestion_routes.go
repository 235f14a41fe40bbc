package routes

import (
	"context"
	"net/http"

	"slotbook/cmd/internal/service"
	"slotbook/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type SuggestionService interface {
	Suggest(ctx context.Context, req *service.SuggestionRequest) (*service.SuggestionResponse, apierror.ErrorResponse)
}

type DefaultSuggestionRoute struct {
	SuggestionService SuggestionService
}

func NewSuggestionDefault(suggestionService SuggestionService) *DefaultSuggestionRoute {
	return &DefaultSuggestionRoute{SuggestionService: suggestionService}
}

func (s *DefaultSuggestionRoute) Suggest(c echo.Context) error {
	var req service.SuggestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := s.SuggestionService.Suggest(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

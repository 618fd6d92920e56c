package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/codewith-ram/task-manager/board"
	"github.com/codewith-ram/task-manager/domain"
)

const (
	maxBodySize          = 64 << 10
	idempotencyHeader    = "Idempotency-Key"
	idempotencyTaskScope = "task"
)

// Register wires up all API routes on the provided Echo instance. deduper may
// be nil, in which case Idempotency-Key headers are ignored.
func Register(e *echo.Echo, b Board, hub *Hub, deduper Deduper, logger *log.Logger) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	g := e.Group("/api", RequestMetrics(logger), GzipRequestMiddleware())
	g.GET("/board", getBoard(b))
	g.GET("/tasks/:id", getTask(b))
	g.POST("/tasks", postTask(b, deduper, logger))
	g.DELETE("/tasks/:id", deleteTask(b))
	g.POST("/modal/open", openModal(b))
	g.POST("/modal/close", closeModal(b))
	g.POST("/drag/begin", dragBegin(b))
	g.POST("/drag/hover", dragHover(b))
	g.POST("/drag/drop", dragDrop(b))
	g.POST("/drag/cancel", dragCancel(b))
	e.GET("/api/stream", streamBoard(b, hub))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getBoard(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		cols := b.Board()
		n := 0
		for _, col := range cols {
			n += col.Count
		}
		metricsFrom(c).SetTasksReturned(n)
		return c.JSON(http.StatusOK, boardResponse{Columns: cols})
	}
}

func getTask(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, ok := b.OpenDetail(c.Param("id"))
		if !ok {
			metricsFrom(c).SetErrorStage("not_found")
			return c.JSON(http.StatusNotFound, errorResponse{Error: domain.ErrTaskNotFound.Error()})
		}
		metricsFrom(c).SetTasksReturned(1)
		return c.JSON(http.StatusOK, task)
	}
}

func postTask(b Board, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		m := metricsFrom(c)

		var in domain.TaskInput
		if err := decodeBody(c, &in); err != nil {
			m.SetErrorStage("decode")
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		key := strings.TrimSpace(c.Request().Header.Get(idempotencyHeader))
		dedupe := deduper != nil && key != ""
		if dedupe {
			added, err := deduper.Add(ctx, idempotencyTaskScope, key)
			switch {
			case err != nil:
				logger.WithError(err).WithField("key", key).Warn("idempotency check failed; processing anyway")
				dedupe = false
			case !added:
				m.SetErrorStage("duplicate")
				return c.JSON(http.StatusOK, duplicateResponse{Duplicate: true, IdempotencyKey: key})
			}
		}

		task, err := b.SubmitTask(ctx, in)
		if task.ID == "" {
			if dedupe {
				if rerr := deduper.Remove(ctx, idempotencyTaskScope, key); rerr != nil {
					logger.WithError(rerr).WithField("key", key).Warn("release idempotency key")
				}
			}
			m.SetErrorStage("validate")
			return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		}
		if err != nil {
			m.SetErrorStage("persist")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func deleteTask(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if _, ok := b.Task(id); !ok {
			metricsFrom(c).SetErrorStage("not_found")
			return c.JSON(http.StatusNotFound, errorResponse{Error: domain.ErrTaskNotFound.Error()})
		}
		confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))
		if !confirmed {
			metricsFrom(c).SetErrorStage("unconfirmed")
			return c.JSON(http.StatusConflict, errorResponse{Error: board.DeleteConfirmation})
		}

		ctx := WithConfirmation(c.Request().Context(), true)
		removed, err := b.RequestDelete(ctx, id)
		if err != nil {
			metricsFrom(c).SetErrorStage("persist")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		if !removed {
			return c.JSON(http.StatusNotFound, errorResponse{Error: domain.ErrTaskNotFound.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func openModal(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Unknown or missing status opens the form on todo.
		status, _ := domain.ParseStatus(c.QueryParam("status"))
		b.OpenCreate(status)
		return c.NoContent(http.StatusNoContent)
	}
}

func closeModal(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.CloseCreate()
		return c.NoContent(http.StatusNoContent)
	}
}

func dragBegin(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dragBeginRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if !b.DragBegin(req.TaskID) {
			metricsFrom(c).SetErrorStage("not_found")
			return c.JSON(http.StatusNotFound, errorResponse{Error: domain.ErrTaskNotFound.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func dragHover(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dragRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if !req.Column.Valid() {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrInvalidStatus.Error()})
		}
		idx, ok := b.DragHover(req.Column, req.PointerY, req.Cards)
		if !ok {
			metricsFrom(c).SetErrorStage("no_drag")
			return c.JSON(http.StatusConflict, errorResponse{Error: board.ErrNoActiveDrag.Error()})
		}
		return c.JSON(http.StatusOK, hoverResponse{Index: idx})
	}
}

func dragDrop(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dragRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		plan, err := b.DragDrop(c.Request().Context(), req.Column, req.PointerY, req.Cards)
		if err != nil {
			metricsFrom(c).SetErrorStage("drop")
			return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, plan)
	}
}

func dragCancel(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.DragCancel()
		return c.NoContent(http.StatusNoContent)
	}
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, board.ErrNoActiveDrag):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

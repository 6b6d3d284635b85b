package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"trenerka/internal/chart"
	"trenerka/internal/core"
	applog "trenerka/internal/log"
	"trenerka/internal/middleware/security"
	ports "trenerka/internal/sheets"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type typeOption struct {
	Value    string
	Label    string
	Selected bool
}

type indexData struct {
	Draft    core.Draft
	Types    []typeOption
	Sessions []core.Card
}

func typeOptions(selected core.SessionType) []typeOption {
	opts := make([]typeOption, 0, 2)
	for _, t := range []core.SessionType{core.Game, core.Personal} {
		opts = append(opts, typeOption{Value: string(t), Label: t.Label(), Selected: t == selected})
	}
	return opts
}

// render executes a template into a buffer so a failure never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate)
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		InternalServerError("Шаблоны не загружены").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name)
		InternalServerError("Ошибка отображения").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]string{"templates": "ok", "journal": "ok"}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if _, err := s.journal.SessionCount(r.Context()); err != nil {
		checks["journal"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "checks": checks})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	draft, err := s.journal.Draft(ctx)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Draft read failed", applog.FieldError, err)
		InternalServerError("Ошибка чтения формы").Write(w)
		return
	}
	sessions, err := s.journal.Sessions(ctx, "")
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Session list failed", applog.FieldError, err)
		InternalServerError("Ошибка чтения журнала").Write(w)
		return
	}

	s.render(w, r, "index.html", indexData{
		Draft:    draft,
		Types:    typeOptions(draft.Type),
		Sessions: core.Cards(sessions),
	})
}

// handleUpdateDraft applies one field edit to the draft.
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if err := parseForm(w, r); err != nil {
		logger.WarnContext(ctx, "Parse form error", applog.FieldError, err)
		BadRequestError("Неверный формат запроса").Write(w)
		return
	}
	update, err := ParseDraftUpdate(r.PostForm, r.Header.Get("HX-Trigger-Name"))
	if err != nil {
		BadRequestError("Неверное поле формы").Write(w)
		return
	}

	if err := s.journal.UpdateDraftField(ctx, update.Field, update.Value); err != nil {
		if errors.Is(err, core.ErrUnknownField) {
			logger.WarnContext(ctx, "Unknown draft field",
				applog.FieldDraftField, update.Field,
				applog.FieldErrorType, applog.ErrorTypeValidation)
			BadRequestError("Неизвестное поле: " + update.Field).Write(w)
			return
		}
		logger.ErrorContext(ctx, "Draft update failed", applog.FieldError, err)
		InternalServerError("Ошибка сохранения черновика").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddSession applies the posted form to the draft and commits it.
func (s *Server) handleAddSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if err := parseForm(w, r); err != nil {
		logger.WarnContext(ctx, "Parse form error", applog.FieldError, err)
		BadRequestError("Неверный формат запроса").Write(w)
		return
	}

	for _, u := range ParseSessionForm(r.PostForm) {
		if err := s.journal.UpdateDraftField(ctx, u.Field, u.Value); err != nil {
			logger.ErrorContext(ctx, "Draft update failed",
				applog.FieldDraftField, u.Field, applog.FieldError, err)
			InternalServerError("Ошибка сохранения черновика").Write(w)
			return
		}
	}

	session, err := s.journal.AddSession(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Add session failed", applog.FieldError, err)
		InternalServerError("Ошибка добавления тренировки").Write(w)
		return
	}

	total, err := s.journal.SessionCount(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Session count failed", applog.FieldError, err)
	}

	SuccessResponse("Тренировка добавлена: " + core.NewCard(session).Heading()).
		TriggerSessionCreated(total).
		TriggerFormReset().
		Write(w)
}

// handleSessionList renders the session cards matching ?name=.
func (s *Server) handleSessionList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := ParseFilter(r.URL.Query())

	sessions, err := s.journal.Sessions(ctx, filter)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Session list failed", applog.FieldError, err)
		InternalServerError("Ошибка чтения журнала").Write(w)
		return
	}
	s.render(w, r, "sessions.html", core.Cards(sessions))
}

// handleChart renders the weekly payments chart as a standalone page.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentChart)

	count, err := s.journal.SessionCount(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Session count failed", applog.FieldError, err)
		InternalServerError("Ошибка построения графика").Write(w)
		return
	}
	key := strconv.Itoa(count)

	page, ok := s.chartPages.Get(key)
	if !ok {
		summary, err := s.journal.WeeklyTotals(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Weekly totals failed", applog.FieldError, err)
			InternalServerError("Ошибка построения графика").Write(w)
			return
		}

		var buf bytes.Buffer
		if err := chart.Render(&buf, summary); err != nil {
			logger.ErrorContext(ctx, "Chart render failed", applog.FieldError, err,
				applog.FieldOperation, applog.OpRender)
			InternalServerError("Ошибка построения графика").Write(w)
			return
		}
		page = buf.Bytes()
		s.chartPages.Set(key, page)
		logger.DebugContext(ctx, "Chart rendered", applog.FieldSessionCount, count)
	}

	w.Header().Set("Content-Security-Policy", security.ChartCSP)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(page)
}

// handleExport streams the whole journal as a workbook download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var buf bytes.Buffer
	if err := s.journal.ExportWorkbook(ctx, &buf); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentExport).
			ErrorContext(ctx, "Workbook export failed", applog.FieldError, err)
		InternalServerError("Ошибка экспорта").Write(w)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", contentDisposition(ports.FileName, ports.FallbackFileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

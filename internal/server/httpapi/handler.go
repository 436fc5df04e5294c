package httpapi

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/dmitrijs2005/boardingpass/internal/api"
	"github.com/dmitrijs2005/boardingpass/internal/server/services"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		s.logger.Error(r.Context(), "database ping failed", "error", err)
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, api.ErrorResponse{Error: "database unavailable"})
		return
	}
	render.JSON(w, r, api.HealthResponse{Status: "OK"})
}

func (s *Server) twitterToken(w http.ResponseWriter, r *http.Request) {
	u, err := s.service.TwitterAuthURL(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, api.TwitterTokenResponse{AuthURL: u})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.badRequest(w, r, services.MsgInvalidPayload)
		return
	}

	resp, err := s.service.Verify(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.badRequest(w, r, services.MsgInvalidPayload)
		return
	}

	resp, err := s.service.Submit(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

func (s *Server) allowListed(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.AllowListed(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

func (s *Server) claim(w http.ResponseWriter, r *http.Request) {
	pass, err := s.service.Claim(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(pass.PNG)))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": pass.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pass.PNG); err != nil {
		s.logger.Warn(r.Context(), "pass write failed", "error", err)
	}
}

// fail maps service errors to responses: rejections become 400 with their
// message, everything else a generic 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var re *services.RequestError
	if errors.As(err, &re) {
		s.logger.Info(r.Context(), "request rejected", "reason", re.Message, "error", re.Err)
		s.badRequest(w, r, re.Message)
		return
	}
	if errors.Is(err, context.Canceled) {
		s.logger.Debug(r.Context(), "request canceled", "error", err)
	} else {
		s.logger.Error(r.Context(), "request failed", "error", err)
	}
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, api.ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, api.ErrorResponse{Error: msg})
}

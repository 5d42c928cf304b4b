// Package web provides the HTTP surface of the nightlightd daemon: the
// schedule form, status pages, and an optional PWM debug page.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/larsalmen/Nightlight-O-Matic/internal/alarm"
	"github.com/larsalmen/Nightlight-O-Matic/internal/output"
	"github.com/larsalmen/Nightlight-O-Matic/internal/schedule"
	"github.com/larsalmen/Nightlight-O-Matic/internal/status"
)

// SubmitFunc hands a candidate schedule to the control loop and waits for
// the result. It is called from HTTP handler goroutines.
type SubmitFunc func(schedule.Schedule) error

// DebugFunc forces a raw PWM duty on a channel, bypassing the schedule.
// Only wired when the debug page is enabled in config.
type DebugFunc func(ch output.Channel, duty int) error

// Server serves the schedule form and status pages over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	submit     SubmitFunc
	gatekeeper string
	debug      DebugFunc
}

// New creates a Server. A nil debug func disables the /debug page.
func New(addr string, tracker *status.Tracker, submit SubmitFunc, gatekeeper string, debug DebugFunc) *Server {
	s := &Server{
		tracker:    tracker,
		submit:     submit,
		gatekeeper: gatekeeper,
		debug:      debug,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/time", s.handleTime)
	if debug != nil {
		mux.HandleFunc("/debug", s.handleDebug)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, s.debug != nil)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleTime accepts schedule submissions (POST) and reports the controller
// clock (GET).
func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleTimeStatus(w, r)
	case http.MethodPost:
		s.handleTimeSubmit(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTimeStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if snap.ClockTime.IsZero() {
		fmt.Fprintln(w, "Controller time: not yet synchronized")
	} else {
		fmt.Fprintf(w, "Controller time: %s\n", snap.ClockTime.Format("Monday 15:04:05"))
	}
	fmt.Fprintf(w, "Day: %s\nNight: %s\n", stateOrUnknown(string(snap.Day)), stateOrUnknown(string(snap.Night)))
}

func (s *Server) handleTimeSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}
	if !s.authorize(w, r) {
		return
	}

	sched, err := parseScheduleForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.submit(sched); err != nil {
		log.Warn().Err(err).Msg("schedule submission rejected")
		switch {
		case isValidationError(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, alarm.ErrCapacityExceeded):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	log.Info().
		Str("day", sched.Day.String()).
		Str("night", sched.Night.String()).
		Bool("weekend", sched.Weekend != nil).
		Msg("schedule accepted via web")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDebug forces a raw duty cycle on one channel. Gated by config and
// behind the same shared secret as schedule submission.
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		renderDebugHTML(w)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form data", http.StatusBadRequest)
			return
		}
		if !s.authorize(w, r) {
			return
		}
		ch, err := parseChannel(r.PostFormValue("channel"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		duty, err := strconv.Atoi(r.PostFormValue("duty"))
		if err != nil || duty < 0 || duty > output.MaxDuty {
			http.Error(w, fmt.Sprintf("duty must be 0-%d", output.MaxDuty), http.StatusBadRequest)
			return
		}
		if err := s.debug(ch, duty); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		log.Info().Str("channel", ch.String()).Int("duty", duty).Msg("debug duty override")
		http.Redirect(w, r, "/debug", http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// authorize checks the gatekeeper shared secret on a parsed form. A missing
// field is a malformed request, a wrong value an unauthorized one.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	got, ok := r.PostForm["gatekeeper"]
	if !ok || len(got) == 0 {
		http.Error(w, "gatekeeper missing", http.StatusBadRequest)
		return false
	}
	if got[0] != s.gatekeeper {
		http.Error(w, "gatekeeper mismatch", http.StatusUnauthorized)
		return false
	}
	return true
}

func parseChannel(v string) (output.Channel, error) {
	switch v {
	case "day":
		return output.Day, nil
	case "night":
		return output.Night, nil
	default:
		return 0, fmt.Errorf("unknown channel %q", v)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, schedule.ErrInvalidTimeOfDay) ||
		errors.Is(err, schedule.ErrIncompleteWeekend) ||
		errors.Is(err, schedule.ErrInvalidIntensity)
}

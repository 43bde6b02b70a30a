package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"encore/internal/config"
	"encore/internal/metrics"
	"encore/internal/sim"
	"encore/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Saves is the persistence surface the server needs. *store.Store satisfies
// it; tests substitute an in-memory map.
type Saves interface {
	Put(ctx context.Context, id, artist string, snapshot []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context) ([]store.SaveHeader, error)
	Delete(ctx context.Context, id string) error
}

type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	store   Saves
	metrics *metrics.Metrics
	balance sim.Balance
	mux     *chi.Mux

	mu       sync.Mutex
	sessions map[string]*sim.Session

	idemMu sync.Mutex
	idem   map[string]map[string]struct{}
}

// ErrDuplicateIdempotency rejects a replayed mutation: the Idempotency-Key
// header was already claimed for this save.
var ErrDuplicateIdempotency = errors.New("duplicate idempotency key")

func New(cfg config.APIConfig, logger *slog.Logger, st Saves, m *metrics.Metrics, bal sim.Balance) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		store:    st,
		metrics:  m,
		balance:  bal,
		mux:      chi.NewRouter(),
		sessions: make(map[string]*sim.Session),
		idem:     make(map[string]map[string]struct{}),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/saves", s.handleCreateSave)
		r.Get("/saves", s.handleListSaves)

		r.Route("/saves/{save_id}", func(r chi.Router) {
			r.Use(s.idempotency)

			r.Get("/", s.handleSaveSummary)
			r.Delete("/", s.handleDeleteSave)
			r.Post("/advance", s.handleAdvance)

			r.Post("/songs", s.handleRecordSong)
			r.Get("/songs", s.handleListSongs)
			r.Get("/songs/{song_id}", s.handleSongStats)
			r.Post("/releases", s.handleAssembleRelease)
			r.Get("/releases", s.handleListReleases)
			r.Get("/releases/{release_id}", s.handleReleaseStats)

			r.Get("/charts/{kind}", s.handleChart)

			r.Get("/inbox", s.handleInbox)
			r.Post("/inbox/{email_id}/read", s.handleMarkEmailRead)

			r.Get("/offers", s.handleOffers)
			r.Post("/offers/{offer_id}/accept", s.handleAcceptOffer)
			r.Post("/offers/{offer_id}/decline", s.handleDeclineOffer)
			r.Post("/offers/{offer_id}/answer", s.handleAnswerQuestion)

			r.Get("/submissions", s.handleListSubmissions)
			r.Post("/submissions/{submission_id}/plan", s.handlePlanRollout)
			r.Post("/submissions/{submission_id}/promo", s.handleSpendPromo)

			r.Get("/awards", s.handleListCeremonies)
			r.Post("/awards/{award}/submit", s.handleSubmitAward)

			r.Get("/tours", s.handleListTours)
			r.Post("/tours", s.handlePlanTour)
			r.Post("/tours/{tour_id}/start", s.handleStartTour)
		})
	})
}

// idempotency dedupes mutations per save. Reads pass through; writes claim
// the request's Idempotency-Key and a replayed key is answered with 409
// before any command runs. Absent the header every request gets a fresh key.
func (s *Server) idempotency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		if err := s.claimIdempotency(chi.URLParam(r, "save_id"), idempotencyKey(r)); err != nil {
			writeDomainError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) claimIdempotency(saveID, key string) error {
	s.idemMu.Lock()
	defer s.idemMu.Unlock()
	keys, ok := s.idem[saveID]
	if !ok {
		keys = make(map[string]struct{})
		s.idem[saveID] = keys
	}
	if _, dup := keys[key]; dup {
		return ErrDuplicateIdempotency
	}
	keys[key] = struct{}{}
	return nil
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}

// session loads the save into memory, going to the store on a cold hit.
// One session instance per save id; the session's own lock serializes
// commands once loaded.
func (s *Server) session(ctx context.Context, saveID string) (*sim.Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[saveID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	snapshot, err := s.store.Get(ctx, saveID)
	if err != nil {
		return nil, err
	}
	state, err := sim.Restore(snapshot)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[saveID]; ok {
		return sess, nil
	}
	sess := sim.NewSession(state, s.log)
	s.sessions[saveID] = sess
	s.metrics.SavesLoaded.Set(float64(len(s.sessions)))
	return sess, nil
}

func (s *Server) evict(saveID string) {
	s.mu.Lock()
	delete(s.sessions, saveID)
	s.metrics.SavesLoaded.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	s.idemMu.Lock()
	delete(s.idem, saveID)
	s.idemMu.Unlock()
}

// persist writes the session's snapshot through to the store. Commands that
// mutated in memory but failed to persist are logged loudly; the in-memory
// session stays authoritative until the next successful write.
func (s *Server) persist(ctx context.Context, saveID string, sess *sim.Session) {
	snapshot, err := sess.Snapshot()
	if err != nil {
		s.log.Error("snapshot save", "save_id", saveID, "error", err)
		return
	}
	if err := s.store.Put(ctx, saveID, sess.Summary().Artist, snapshot); err != nil {
		s.log.Error("persist save", "save_id", saveID, "error", err)
	}
}

func (s *Server) handleCreateSave(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Artist string `json:"artist"`
		Seed   int64  `json:"seed"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Artist = strings.TrimSpace(in.Artist)
	if in.Artist == "" {
		writeError(w, http.StatusBadRequest, "artist is required")
		return
	}

	saveID := uuid.NewString()
	state := sim.NewState(saveID, in.Artist, in.Seed, s.balance)
	sess := sim.NewSession(state, s.log)

	snapshot, err := sess.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.Put(r.Context(), saveID, in.Artist, snapshot); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.sessions[saveID] = sess
	s.metrics.SavesLoaded.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	s.log.Info("save created", "save_id", saveID, "artist", in.Artist, "seed", in.Seed)
	writeJSON(w, http.StatusCreated, sess.Summary())
}

func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	headers, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saves": headers})
}

func (s *Server) handleSaveSummary(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Summary())
}

func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	saveID := chi.URLParam(r, "save_id")
	if err := s.store.Delete(r.Context(), saveID); err != nil {
		writeDomainError(w, err)
		return
	}
	s.evict(saveID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": saveID})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var in struct {
		Weeks int `json:"weeks"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stop := s.metrics.TimeTick()
	res, err := sess.AdvanceWeeks(in.Weeks)
	stop()
	s.metrics.ObserveCommand("advance", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecordSong(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var in struct {
		Title string `json:"title"`
		Genre string `json:"genre"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	song, res, err := sess.RecordSong(in.Title, in.Genre)
	s.metrics.ObserveCommand("record_song", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusCreated, map[string]any{"song": song, "result": res})
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"songs": sess.Songs()})
}

func (s *Server) handleSongStats(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	stats, err := sess.SongStats(chi.URLParam(r, "song_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAssembleRelease(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var in struct {
		Title   string   `json:"title"`
		Kind    string   `json:"kind"`
		SongIDs []string `json:"song_ids"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rel, res, err := sess.AssembleRelease(in.Title, sim.ReleaseKind(in.Kind), in.SongIDs)
	s.metrics.ObserveCommand("assemble_release", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusCreated, map[string]any{"release": rel, "result": res})
}

func (s *Server) handleListReleases(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"releases": sess.Releases()})
}

func (s *Server) handleReleaseStats(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	stats, err := sess.ReleaseStats(chi.URLParam(r, "release_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	kind := sim.ChartKind(chi.URLParam(r, "kind"))
	if g := r.URL.Query().Get("genre"); g != "" {
		parsed, err := sim.ParseGenre(g)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		kind = sim.GenreChart(parsed)
	}
	writeJSON(w, http.StatusOK, sess.Chart(kind))
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"emails": sess.Inbox()})
}

func (s *Server) handleMarkEmailRead(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	res, err := sess.MarkEmailRead(chi.URLParam(r, "email_id"))
	s.metrics.ObserveCommand("mark_email_read", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": sess.Offers()})
}

func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	s.offerCommand(w, r, "accept_offer", func(sess *sim.Session, offerID string) (sim.CommandResult, error) {
		return sess.AcceptOffer(offerID)
	})
}

func (s *Server) handleDeclineOffer(w http.ResponseWriter, r *http.Request) {
	s.offerCommand(w, r, "decline_offer", func(sess *sim.Session, offerID string) (sim.CommandResult, error) {
		return sess.DeclineOffer(offerID)
	})
}

func (s *Server) offerCommand(w http.ResponseWriter, r *http.Request, name string,
	fn func(*sim.Session, string) (sim.CommandResult, error)) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	res, err := fn(sess, chi.URLParam(r, "offer_id"))
	s.metrics.ObserveCommand(name, err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnswerQuestion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := sess.AnswerQuestion(chi.URLParam(r, "offer_id"), in.Text)
	s.metrics.ObserveCommand("answer_question", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": sess.Submissions()})
}

func (s *Server) handlePlanRollout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var in struct {
		ProjectDate sim.GameDate     `json:"project_date"`
		Singles     []sim.SinglePlan `json:"singles"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := sess.PlanRollout(chi.URLParam(r, "submission_id"), in.ProjectDate, in.Singles)
	s.metrics.ObserveCommand("plan_rollout", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSpendPromo(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var in struct {
		Action string `json:"action"`
		SongID string `json:"song_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, res, err := sess.SpendPromo(chi.URLParam(r, "submission_id"), sim.PromoAction(in.Action), in.SongID)
	s.metrics.ObserveCommand("spend_promo", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusOK, map[string]any{"submission": sub, "result": res})
}

func (s *Server) handleListCeremonies(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ceremonies": sess.Ceremonies()})
}

func (s *Server) handleSubmitAward(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	award := sim.AwardKind(chi.URLParam(r, "award"))
	if award != sim.AwardGrammy && award != sim.AwardOscar {
		writeError(w, http.StatusBadRequest, "unknown award")
		return
	}
	var in struct {
		Entries []sim.SubmittedEntry `json:"entries"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := sess.SubmitAward(award, in.Entries)
	s.metrics.ObserveCommand("submit_award", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListTours(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tours": sess.Tours()})
}

func (s *Server) handlePlanTour(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var in struct {
		Name   string      `json:"name"`
		Venues []sim.Venue `json:"venues"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tour, res, err := sess.PlanTour(in.Name, in.Venues)
	s.metrics.ObserveCommand("plan_tour", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusCreated, map[string]any{"tour": tour, "result": res})
}

func (s *Server) handleStartTour(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "save_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	res, err := sess.StartTour(chi.URLParam(r, "tour_id"))
	s.metrics.ObserveCommand("start_tour", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context(), chi.URLParam(r, "save_id"), sess)
	writeJSON(w, http.StatusOK, res)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDuplicateIdempotency):
		writeError(w, http.StatusConflict, err.Error())
	case sim.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case sim.IsNotFound(err), errors.Is(err, store.ErrSaveNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

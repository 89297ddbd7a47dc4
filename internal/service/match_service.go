package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"campusduel/internal/cache"
	"campusduel/internal/duel"
	"campusduel/internal/model"
	"campusduel/internal/repository"
)

// MatchService drives the duel state machine over the shared match record.
// It never trusts its own reads: every mutation is a conditional repository
// write, so duplicate triggers (redundant notifications, racing timers, two
// clients observing the same deadline) degrade to no-ops instead of
// double-applied damage.
type MatchService struct {
	matchRepo  repository.MatchRepo
	catalog    *CatalogService
	matchCache cache.MatchCache
	presence   *PresenceService
	authSvc    *AuthService

	broadcaster Broadcaster
	now         func() time.Time

	mu       sync.Mutex
	timers   map[string]*time.Timer
	watchers map[string]chan struct{}
}

// NewMatchService creates a new match service
func NewMatchService(
	matchRepo repository.MatchRepo,
	catalog *CatalogService,
	matchCache cache.MatchCache,
	presence *PresenceService,
	authSvc *AuthService,
) *MatchService {
	return &MatchService{
		matchRepo:  matchRepo,
		catalog:    catalog,
		matchCache: matchCache,
		presence:   presence,
		authSvc:    authSvc,
		now:        time.Now,
		timers:     make(map[string]*time.Timer),
		watchers:   make(map[string]chan struct{}),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *MatchService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateMatch opens a lobby. The creator is seated first and holds the host
// role for the whole match.
func (s *MatchService) CreateMatch(ctx context.Context, displayName string, timing model.TimingConfig, totalRounds int) (*model.JoinResponse, error) {
	timing = normalizeTiming(timing)

	playerID := newID("p_")
	match := &model.Match{
		ID:            newID("m_"),
		Players:       []model.Player{{ID: playerID, DisplayName: displayName}},
		HostID:        playerID,
		Phase:         model.PhaseLobby,
		Timing:        timing,
		TotalRounds:   totalRounds,
		Health:        map[string]int{playerID: duel.StartingHealth},
		RoundHistory:  []model.RoundRecord{},
		UsedImageRefs: []string{},
		CreatedAt:     s.now(),
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}
	if err := s.matchCache.SetSnapshot(ctx, match); err != nil {
		log.Printf("failed to cache match %s: %v", match.ID, err)
	}
	if err := s.presence.Heartbeat(ctx, match.ID, playerID); err != nil {
		log.Printf("failed to seed presence for %s: %v", playerID, err)
	}

	token, err := s.authSvc.GeneratePlayerToken(match.ID, playerID)
	if err != nil {
		return nil, err
	}

	return &model.JoinResponse{
		PlayerID: playerID,
		Token:    token,
		Match:    model.NewMatchView(match, playerID),
	}, nil
}

// JoinMatch seats the second player into an open lobby.
func (s *MatchService) JoinMatch(ctx context.Context, matchID, displayName string) (*model.JoinResponse, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if match.Phase != model.PhaseLobby {
		return nil, ErrWrongPhase
	}

	player := model.Player{ID: newID("p_"), DisplayName: displayName}
	applied, err := s.matchRepo.AddPlayer(ctx, matchID, player, duel.StartingHealth)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrMatchFull
	}

	s.refreshSnapshot(ctx, matchID)
	if err := s.presence.Heartbeat(ctx, matchID, player.ID); err != nil {
		log.Printf("failed to seed presence for %s: %v", player.ID, err)
	}
	s.publish(ctx, &model.MatchEvent{Type: model.EventPlayerJoined, MatchID: matchID, PlayerID: player.ID})

	token, err := s.authSvc.GeneratePlayerToken(matchID, player.ID)
	if err != nil {
		return nil, err
	}
	match, err = s.matchRepo.GetByID(ctx, matchID)
	if err != nil || match == nil {
		return nil, ErrMatchNotFound
	}

	return &model.JoinResponse{
		PlayerID: player.ID,
		Token:    token,
		Match:    model.NewMatchView(match, player.ID),
	}, nil
}

// StartMatch moves a full lobby into the first guessing round. Host only.
func (s *MatchService) StartMatch(ctx context.Context, matchID, playerID string) (*model.MatchView, error) {
	match, err := s.requireMember(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}
	if playerID != match.HostID {
		return nil, ErrNotHost
	}
	if match.Phase != model.PhaseLobby {
		return nil, ErrWrongPhase
	}
	if len(match.Players) != 2 {
		return nil, ErrLobbyNotReady
	}

	if _, err := s.openRound(ctx, match, model.PhaseLobby, 1); err != nil {
		return nil, err
	}
	s.publish(ctx, &model.MatchEvent{Type: model.EventMatchStarted, MatchID: matchID})
	s.startLivenessWatch(matchID)

	return s.GetView(ctx, matchID, playerID)
}

// SubmitGuess records the calling player's guess for the active round.
// Players only ever write their own guess slot; the conditional repository
// write enforces it. Once every slot is filled the round finalizes.
func (s *MatchService) SubmitGuess(ctx context.Context, matchID, playerID string, location *model.Point, floor *int) (*model.MatchView, error) {
	match, err := s.requireMember(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}
	if match.Phase != model.PhaseGuessing || match.CurrentRound == nil {
		return nil, ErrWrongPhase
	}
	round := match.CurrentRound
	firstGuess := round.FirstGuessAt == nil

	guess := &model.Guess{
		Location:    location,
		Floor:       floor,
		SubmittedAt: s.now(),
	}
	applied, err := s.matchRepo.RecordGuess(ctx, matchID, round.Number, playerID, guess)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race: either our slot is already filled (duplicate
		// submit, or a timeout guess beat us) or the round moved on.
		fresh, ferr := s.matchRepo.GetByID(ctx, matchID)
		if ferr != nil || fresh == nil {
			return nil, ErrRoundClosed
		}
		if fresh.Phase == model.PhaseGuessing && fresh.CurrentRound != nil &&
			fresh.CurrentRound.Number == round.Number && fresh.CurrentRound.Guesses[playerID] != nil {
			return nil, ErrAlreadyGuessed
		}
		return nil, ErrRoundClosed
	}

	s.refreshSnapshot(ctx, matchID)
	s.publish(ctx, &model.MatchEvent{Type: model.EventGuessSubmitted, MatchID: matchID, PlayerID: playerID, Round: round.Number})

	// The first guess under countdown mode starts the laggard's clock.
	if firstGuess && match.Timing.Mode == model.TimingCountdownAfterFirstGuess {
		if opponent := match.OpponentOf(playerID); opponent != "" && s.broadcaster != nil {
			s.broadcaster.BroadcastToPlayer(matchID, opponent, "countdown_started", map[string]interface{}{
				"seconds": match.Timing.CountdownSeconds,
				"round":   round.Number,
			})
		}
	}
	s.rescheduleDeadline(ctx, matchID)

	s.maybeFinalize(ctx, matchID)
	return s.GetView(ctx, matchID, playerID)
}

// AdvanceRound opens the next round after a round_result. Host only; a
// duplicate trigger that finds the next round already open is a no-op.
func (s *MatchService) AdvanceRound(ctx context.Context, matchID, playerID string) (*model.MatchView, error) {
	match, err := s.requireMember(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}
	if playerID != match.HostID {
		return nil, ErrNotHost
	}
	if match.Phase != model.PhaseRoundResult {
		if match.Phase == model.PhaseGuessing {
			// Redelivered advance trigger; the round is already open.
			return s.GetView(ctx, matchID, playerID)
		}
		return nil, ErrWrongPhase
	}

	next := len(match.RoundHistory) + 1
	if _, err := s.openRound(ctx, match, model.PhaseRoundResult, next); err != nil {
		return nil, err
	}
	return s.GetView(ctx, matchID, playerID)
}

// LeaveMatch forfeits on behalf of the calling player. Always permitted,
// always safe: from any live phase it degrades to the forfeit transition
// and takes precedence over any in-flight finalization.
func (s *MatchService) LeaveMatch(ctx context.Context, matchID, playerID string) (*model.MatchView, error) {
	match, err := s.requireMember(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}
	if match.Phase == model.PhaseGameOver {
		return model.NewMatchView(match, playerID), nil
	}

	s.forfeit(ctx, matchID, playerID, match.OpponentOf(playerID))
	return s.GetView(ctx, matchID, playerID)
}

// Heartbeat refreshes the caller's presence and opportunistically checks
// the opponent's.
func (s *MatchService) Heartbeat(ctx context.Context, matchID, playerID string) error {
	match, err := s.requireMember(ctx, matchID, playerID)
	if err != nil {
		return err
	}
	if err := s.presence.Heartbeat(ctx, matchID, playerID); err != nil {
		return err
	}
	if match.Phase == model.PhaseGuessing || match.Phase == model.PhaseRoundResult {
		if opponent := match.OpponentOf(playerID); opponent != "" {
			live, err := s.presence.IsPlayerLive(ctx, matchID, opponent)
			if err == nil && !live {
				s.forfeit(ctx, matchID, opponent, playerID)
			}
		}
	}
	return nil
}

// GetView returns the caller's read model. Served from the Redis snapshot
// when warm; the snapshot may trail the record by one notification, which
// is the eventual consistency the clients are built for.
func (s *MatchService) GetView(ctx context.Context, matchID, viewerID string) (*model.MatchView, error) {
	match, err := s.matchCache.GetSnapshot(ctx, matchID)
	if err != nil || match == nil {
		match, err = s.matchRepo.GetByID(ctx, matchID)
		if err != nil {
			return nil, err
		}
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if !match.HasPlayer(viewerID) {
		return nil, ErrNotInMatch
	}
	return model.NewMatchView(match, viewerID), nil
}

// Shutdown cancels all scheduled deadline timers and liveness watchers.
func (s *MatchService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	for id, stop := range s.watchers {
		close(stop)
		delete(s.watchers, id)
	}
}

// ---- round lifecycle internals ----

// openRound selects an unused location and conditionally installs the new
// round. A lost race (the round was already opened) is reported as applied
// by the caller re-reading, not as an error.
func (s *MatchService) openRound(ctx context.Context, match *model.Match, fromPhase model.MatchPhase, number int) (bool, error) {
	loc, err := s.catalog.SelectUnusedLocation(ctx, match.UsedImageRefs)
	if err != nil {
		return false, err
	}

	round := duel.NewRound(number, loc, match.Players, s.now())
	applied, err := s.matchRepo.OpenRound(ctx, match.ID, fromPhase, round)
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	s.refreshSnapshot(ctx, match.ID)
	s.publish(ctx, &model.MatchEvent{Type: model.EventRoundOpened, MatchID: match.ID, Round: number})
	s.scheduleDeadline(match.ID, round, match.Timing)
	return true, nil
}

// maybeFinalize closes the round if every player has a guess, or forces
// timeout guesses first if the deadline has passed.
func (s *MatchService) maybeFinalize(ctx context.Context, matchID string) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil || match == nil || match.Phase != model.PhaseGuessing || match.CurrentRound == nil {
		return
	}
	if duel.Complete(match.CurrentRound, match.Players) {
		s.finalize(ctx, match)
		return
	}
	if duel.Expired(match.CurrentRound, match.Timing, s.now()) {
		s.forceClose(ctx, matchID)
	}
}

// forceClose synthesizes timeout guesses for everyone still missing once
// the deadline has passed, then finalizes. The guess writes go through the
// same conditional path as real guesses, so a racing real submission wins.
func (s *MatchService) forceClose(ctx context.Context, matchID string) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil || match == nil || match.Phase != model.PhaseGuessing || match.CurrentRound == nil {
		return
	}
	round := match.CurrentRound
	if !duel.Expired(round, match.Timing, s.now()) {
		return
	}

	for _, pid := range duel.MissingPlayers(round, match.Players) {
		if _, err := s.matchRepo.RecordGuess(ctx, matchID, round.Number, pid, duel.TimeoutGuess(s.now())); err != nil {
			log.Printf("failed to record timeout guess for %s in match %s: %v", pid, matchID, err)
		}
	}

	match, err = s.matchRepo.GetByID(ctx, matchID)
	if err != nil || match == nil || match.Phase != model.PhaseGuessing || match.CurrentRound == nil {
		return
	}
	if duel.Complete(match.CurrentRound, match.Players) {
		s.finalize(ctx, match)
	}
}

// finalize scores the round, settles damage, appends the history record
// and decides whether the match is over. The conditional repository write
// is the exactly-once guard: whichever duplicate trigger loses, no-ops.
func (s *MatchService) finalize(ctx context.Context, match *model.Match) {
	round := match.CurrentRound
	rec, healthAfter := duel.FinalizeRound(round, match.Players, match.Health, s.now())

	totalScores := make(map[string]int, len(match.Players))
	for _, p := range match.Players {
		totalScores[p.ID] = match.TotalScore(p.ID) + rec.Results[p.ID].Score
	}
	outcome := duel.DecideOutcome(match.Players, healthAfter, totalScores, round.Number, match.TotalRounds)

	applied, err := s.matchRepo.FinalizeRound(ctx, match.ID, round.Number, rec, healthAfter, outcome)
	if err != nil {
		log.Printf("failed to finalize round %d of match %s: %v", round.Number, match.ID, err)
		return
	}
	if !applied {
		return
	}

	s.cancelTimer(match.ID)
	s.refreshSnapshot(ctx, match.ID)
	s.publish(ctx, &model.MatchEvent{Type: model.EventRoundFinalized, MatchID: match.ID, Round: round.Number})
	if outcome != nil {
		s.endMatch(ctx, match.ID)
	}
}

// forfeit ends the match in the opponent's favor. Writable on behalf of
// either player; the phase filter in the repository gives it precedence
// over a concurrently running finalization.
func (s *MatchService) forfeit(ctx context.Context, matchID, leaverID, winnerID string) {
	outcome := duel.ForfeitOutcome(leaverID, winnerID)
	applied, err := s.matchRepo.Forfeit(ctx, matchID, outcome)
	if err != nil {
		log.Printf("failed to forfeit match %s: %v", matchID, err)
		return
	}
	if !applied {
		return
	}
	if err := s.presence.Clear(ctx, matchID, leaverID); err != nil {
		log.Printf("failed to clear presence for %s: %v", leaverID, err)
	}
	s.refreshSnapshot(ctx, matchID)
	s.endMatch(ctx, matchID)
}

func (s *MatchService) endMatch(ctx context.Context, matchID string) {
	s.cancelTimer(matchID)
	s.stopLivenessWatch(matchID)
	s.publish(ctx, &model.MatchEvent{Type: model.EventMatchOver, MatchID: matchID})
	if s.broadcaster != nil {
		s.broadcaster.DisconnectMatch(matchID)
	}
}

// ---- timers and liveness ----

// scheduleDeadline arms the wall-clock check that force-closes the round.
// Under countdown mode no timer exists until the first guess arrives.
func (s *MatchService) scheduleDeadline(matchID string, round *model.Round, cfg model.TimingConfig) {
	deadline, ok := duel.Deadline(round, cfg)
	if !ok {
		return
	}
	wait := deadline.Sub(s.now())
	if wait < 0 {
		wait = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, exists := s.timers[matchID]; exists {
		t.Stop()
	}
	s.timers[matchID] = time.AfterFunc(wait, func() {
		s.forceClose(context.Background(), matchID)
	})
}

// rescheduleDeadline re-reads the round and re-arms the timer; used after
// a guess lands, when the countdown deadline may have just come into
// existence.
func (s *MatchService) rescheduleDeadline(ctx context.Context, matchID string) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil || match == nil || match.Phase != model.PhaseGuessing || match.CurrentRound == nil {
		return
	}
	s.scheduleDeadline(matchID, match.CurrentRound, match.Timing)
}

func (s *MatchService) cancelTimer(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, exists := s.timers[matchID]; exists {
		t.Stop()
		delete(s.timers, matchID)
	}
}

// startLivenessWatch polls both players' presence and forfeits whoever
// disappears beyond the grace period.
func (s *MatchService) startLivenessWatch(matchID string) {
	s.mu.Lock()
	if _, exists := s.watchers[matchID]; exists {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.watchers[matchID] = stop
	s.mu.Unlock()

	interval := s.presence.Grace() / 3
	if interval < time.Second {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx := context.Background()
				match, err := s.matchRepo.GetByID(ctx, matchID)
				if err != nil || match == nil || match.Phase == model.PhaseGameOver {
					s.stopLivenessWatch(matchID)
					return
				}
				if match.Phase == model.PhaseLobby {
					continue
				}
				for _, p := range match.Players {
					live, err := s.presence.IsPlayerLive(ctx, matchID, p.ID)
					if err == nil && !live {
						s.forfeit(ctx, matchID, p.ID, match.OpponentOf(p.ID))
						return
					}
				}
			}
		}
	}()
}

func (s *MatchService) stopLivenessWatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, exists := s.watchers[matchID]; exists {
		close(stop)
		delete(s.watchers, matchID)
	}
}

// ---- helpers ----

func (s *MatchService) requireMember(ctx context.Context, matchID, playerID string) (*model.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if !match.HasPlayer(playerID) {
		return nil, ErrNotInMatch
	}
	return match, nil
}

func (s *MatchService) refreshSnapshot(ctx context.Context, matchID string) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil || match == nil {
		return
	}
	if err := s.matchCache.SetSnapshot(ctx, match); err != nil {
		log.Printf("failed to refresh snapshot for match %s: %v", matchID, err)
	}
}

func (s *MatchService) publish(ctx context.Context, event *model.MatchEvent) {
	if err := s.matchCache.PublishEvent(ctx, event); err != nil {
		log.Printf("failed to publish %s for match %s: %v", event.Type, event.MatchID, err)
	}
}

func normalizeTiming(t model.TimingConfig) model.TimingConfig {
	if t.Mode == "" {
		t.Mode = model.TimingSimultaneousFixed
	}
	if t.RoundSeconds <= 0 {
		t.RoundSeconds = duel.DefaultRoundSeconds
	}
	if t.CountdownSeconds <= 0 {
		t.CountdownSeconds = duel.DefaultCountdownSeconds
	}
	return t
}

func newID(prefix string) string {
	return prefix + uuid.New().String()[:8]
}

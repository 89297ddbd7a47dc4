package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"campusduel/internal/model"
)

// MatchRepo owns the shared match record. Every mutating call is a
// conditional update whose filter encodes the synchronization discipline:
// a write that lost its race matches zero documents and reports
// applied=false instead of clobbering state. This is what makes guess
// intake write-partitioned per player and finalization exactly-once.
type MatchRepo interface {
	Create(ctx context.Context, m *model.Match) error
	GetByID(ctx context.Context, id string) (*model.Match, error)

	// AddPlayer seats a second player while the lobby is open. Rejected
	// once two players are present or the id is already seated.
	AddPlayer(ctx context.Context, matchID string, p model.Player, startingHealth int) (bool, error)

	// OpenRound moves fromPhase -> guessing and installs the round. The
	// history-size filter keeps round numbers gapless and strictly
	// increasing under duplicate triggers.
	OpenRound(ctx context.Context, matchID string, fromPhase model.MatchPhase, round *model.Round) (bool, error)

	// RecordGuess writes one player's own guess slot for the given round.
	// The filter requires the slot to still be null, so a player can never
	// overwrite a recorded guess and late writes after closure no-op.
	RecordGuess(ctx context.Context, matchID string, roundNumber int, playerID string, g *model.Guess) (bool, error)

	// FinalizeRound appends the record and settles health in one
	// conditional update keyed on phase+round, so redelivered finalization
	// triggers apply at most once. A non-nil outcome ends the match.
	FinalizeRound(ctx context.Context, matchID string, roundNumber int, rec model.RoundRecord, healthAfter map[string]int, outcome *model.Outcome) (bool, error)

	// Forfeit ends the match from any non-terminal phase. Writable on
	// behalf of either player and takes precedence over in-flight
	// finalization by virtue of the phase filter.
	Forfeit(ctx context.Context, matchID string, outcome *model.Outcome) (bool, error)
}

type matchRepo struct {
	collection *mongo.Collection
}

func NewMatchRepo(db *mongo.Database) MatchRepo {
	return &matchRepo{
		collection: db.Collection("matches"),
	}
}

func (r *matchRepo) Create(ctx context.Context, m *model.Match) error {
	_, err := r.collection.InsertOne(ctx, m)
	return err
}

func (r *matchRepo) GetByID(ctx context.Context, id string) (*model.Match, error) {
	var m model.Match
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *matchRepo) AddPlayer(ctx context.Context, matchID string, p model.Player, startingHealth int) (bool, error) {
	filter := bson.M{
		"_id":        matchID,
		"phase":      model.PhaseLobby,
		"players.1":  bson.M{"$exists": false},
		"players.id": bson.M{"$ne": p.ID},
	}
	update := bson.M{
		"$push": bson.M{"players": p},
		"$set":  bson.M{"health." + p.ID: startingHealth},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *matchRepo) OpenRound(ctx context.Context, matchID string, fromPhase model.MatchPhase, round *model.Round) (bool, error) {
	filter := bson.M{
		"_id":          matchID,
		"phase":        fromPhase,
		"roundHistory": bson.M{"$size": round.Number - 1},
	}
	update := bson.M{
		"$set": bson.M{
			"phase":        model.PhaseGuessing,
			"currentRound": round,
		},
		"$addToSet": bson.M{"usedImageRefs": round.ImageRef},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *matchRepo) RecordGuess(ctx context.Context, matchID string, roundNumber int, playerID string, g *model.Guess) (bool, error) {
	filter := bson.M{
		"_id":                 matchID,
		"phase":               model.PhaseGuessing,
		"currentRound.number": roundNumber,
		"currentRound.guesses." + playerID: nil,
	}
	update := bson.M{
		"$set": bson.M{"currentRound.guesses." + playerID: g},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, nil
	}

	// Start the post-first-guess countdown clock if it is not running yet.
	// Separate conditional write so only the actual first guess sets it.
	_, err = r.collection.UpdateOne(ctx, bson.M{
		"_id":                       matchID,
		"currentRound.number":       roundNumber,
		"currentRound.firstGuessAt": nil,
	}, bson.M{
		"$set": bson.M{"currentRound.firstGuessAt": g.SubmittedAt},
	})
	if err != nil {
		return true, err
	}
	return true, nil
}

func (r *matchRepo) FinalizeRound(ctx context.Context, matchID string, roundNumber int, rec model.RoundRecord, healthAfter map[string]int, outcome *model.Outcome) (bool, error) {
	nextPhase := model.PhaseRoundResult
	set := bson.M{
		"health": healthAfter,
	}
	if outcome != nil {
		nextPhase = model.PhaseGameOver
		set["outcome"] = outcome
	}
	set["phase"] = nextPhase

	filter := bson.M{
		"_id":                 matchID,
		"phase":               model.PhaseGuessing,
		"currentRound.number": roundNumber,
	}
	update := bson.M{
		"$set":   set,
		"$push":  bson.M{"roundHistory": rec},
		"$unset": bson.M{"currentRound": ""},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *matchRepo) Forfeit(ctx context.Context, matchID string, outcome *model.Outcome) (bool, error) {
	filter := bson.M{
		"_id":   matchID,
		"phase": bson.M{"$ne": model.PhaseGameOver},
	}
	update := bson.M{
		"$set":   bson.M{"phase": model.PhaseGameOver, "outcome": outcome},
		"$unset": bson.M{"currentRound": ""},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

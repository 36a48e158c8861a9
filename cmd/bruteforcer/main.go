// Command bruteforcer plays missions against a running server until the fox
// wins or it runs out of attempts. Every attempt is a fresh session driven
// one round at a time by HuntStrategy; ties are broken differently on each
// attempt.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/foxandgeese/game/engine"
)

// errNoStatus is returned when the server answers without a status snapshot
var errNoStatus = errors.New("response has no status")

// AttemptResult summarizes one attempt
type AttemptResult struct {
	SessionID     string
	Rounds        int
	MissionStatus engine.MissionStatus
	GeeseLeft     int
}

func main() {
	cmd := &cli.Command{
		Name:  "bruteforcer",
		Usage: "Play Fox and Geese missions automatically",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "mission", Usage: "Mission id (server default when empty)"},
			&cli.IntFlag{Name: "max-rounds", Value: 200, Usage: "Maximum rounds per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 20, Usage: "Maximum attempts before giving up"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between rounds in milliseconds"},
			&cli.BoolFlag{Name: "keep", Usage: "Keep finished sessions on the server"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if !cmd.Bool("v") {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.InfoLevel))
	}

	client := NewClient(cmd.String("url"))
	maxAttempts := int(cmd.Int("max-attempts"))
	delay := time.Duration(cmd.Int("delay")) * time.Millisecond

	logger.Info("Connecting to game server", zap.String("url", cmd.String("url")))

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := runAttempt(ctx, client, cmd.String("mission"), int64(attempt), int(cmd.Int("max-rounds")), delay, logger)
		if err != nil {
			return fmt.Errorf("attempt %d: %w", attempt, err)
		}

		logger.Info("Attempt finished",
			zap.Int("attempt", attempt),
			zap.String("session_id", result.SessionID),
			zap.Int("rounds", result.Rounds),
			zap.String("mission_status", string(result.MissionStatus)),
			zap.Int("geese_left", result.GeeseLeft),
		)

		if !cmd.Bool("keep") && result.MissionStatus != engine.PlayerWin {
			if err := client.DeleteSession(ctx, result.SessionID); err != nil {
				logger.Warn("Failed to delete session", zap.Error(err))
			}
		}

		if result.MissionStatus == engine.PlayerWin {
			logger.Info("VICTORY", zap.Int("attempt", attempt), zap.String("session_id", result.SessionID))
			return nil
		}
	}

	return fmt.Errorf("failed to win after %d attempts", maxAttempts)
}

// runAttempt plays a fresh session until the mission ends or maxRounds is reached
func runAttempt(ctx context.Context, client *Client, missionID string, seed int64, maxRounds int, delay time.Duration, logger *zap.Logger) (*AttemptResult, error) {
	info, err := client.CreateSession(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if info.Status == nil {
		return nil, errNoStatus
	}

	status := info.Status
	strategy := NewHuntStrategy(status.Grid, seed)
	result := &AttemptResult{SessionID: info.ID, MissionStatus: status.MissionStatus}

	for result.Rounds < maxRounds && !result.MissionStatus.IsFinished() {
		move := strategy.NextMove(status.Entities)

		played, err := client.Play(ctx, info.ID, []string{move})
		if err != nil {
			return nil, err
		}
		if played.Status == nil {
			return nil, errNoStatus
		}
		if played.RoundsPlayed == 0 {
			return nil, fmt.Errorf("round rejected: %s", played.StoppedReason)
		}

		status = played.Status
		result.Rounds++
		result.MissionStatus = played.MissionStatus

		logger.Debug("Round played",
			zap.Int("round", status.Round),
			zap.String("move", move),
			zap.String("mission_status", string(played.MissionStatus)),
		)

		if delay > 0 {
			time.Sleep(delay)
		}
	}

	result.GeeseLeft = engine.CountByType(status.Entities)[engine.Goose]
	return result, nil
}

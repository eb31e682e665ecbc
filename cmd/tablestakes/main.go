package main

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/tablestakes/internal/config"
	"github.com/lox/tablestakes/internal/engine"
	"github.com/lox/tablestakes/internal/shuffle"
	"github.com/lox/tablestakes/internal/table"
	"github.com/lox/tablestakes/poker"
)

type CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"info"`

	Simulate SimulateCmd `cmd:"" help:"Run hands with scripted players and verify conservation"`
	Eval     EvalCmd     `cmd:"" help:"Evaluate a seven-card hand"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tablestakes"),
		kong.Description("Texas Hold'em settlement engine"),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if lvl, err := log.ParseLevel(cli.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	if err := ctx.Run(logger); err != nil {
		logger.Fatal("command failed", "err", err)
	}
}

type SimulateCmd struct {
	Config  string `short:"c" help:"HCL config file" default:"tablestakes.hcl"`
	Hands   int    `default:"100" help:"Hands to run per table"`
	Tables  int    `default:"4" help:"Concurrent tables"`
	Players int    `default:"4" help:"Players per table"`
	Seed    int64  `default:"0" help:"Action RNG seed (0 for random)"`
}

func (cmd *SimulateCmd) Run(logger *log.Logger) error {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	tableCfg := cfg.Tables[0].TableConfig()

	seed := cmd.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("simulation starting",
		"tables", cmd.Tables, "hands", cmd.Hands,
		"players", cmd.Players, "seed", seed)

	custody := engine.NewMemoryCustody()
	svc := engine.NewService(cfg.Engine.AdminToken, quartz.NewReal(), logger, custody)
	defer svc.Close()

	start := time.Now()
	var g errgroup.Group
	for i := 0; i < cmd.Tables; i++ {
		rng := mrand.New(mrand.NewSource(seed + int64(i)))
		// A fee account per table keeps the conservation check exact.
		cfg := tableCfg
		cfg.FeeRecipient = fmt.Sprintf("house-%d", i)
		g.Go(func() error {
			return runTable(svc, custody, cfg, cmd.Hands, cmd.Players, rng, logger)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("simulation complete",
		"hands", cmd.Hands*cmd.Tables,
		"fees", custody.Total(),
		"elapsed", time.Since(start))
	return nil
}

// runTable plays hands with uniformly random legal actions and checks
// chip conservation after every hand.
func runTable(svc *engine.Service, custody *engine.MemoryCustody, cfg table.Config,
	hands, players int, rng *mrand.Rand, logger *log.Logger) error {

	id, err := svc.CreateTable(cfg)
	if err != nil {
		return err
	}

	buyIn := cfg.MaxBuyIn
	var deposited int64
	for seat := 0; seat < players; seat++ {
		if err := svc.Sit(id, seat, fmt.Sprintf("sim-%s-%d", id, seat), buyIn); err != nil {
			return err
		}
		deposited += buyIn
	}

	for hand := 0; hand < hands; hand++ {
		added, err := playHand(svc, id, players, rng)
		if err != nil {
			return fmt.Errorf("table %s hand %d: %w", id, hand, err)
		}
		deposited += added

		var onTable int64
		if err := svc.View(id, func(t *table.Table) {
			for seat := 0; seat < t.NumSeats(); seat++ {
				onTable += t.SeatInfo(seat).Chips
			}
		}); err != nil {
			return err
		}
		if total := onTable + custody.Balance(cfg.FeeRecipient); total != deposited {
			return fmt.Errorf("table %s hand %d: conservation broken, %d chips from %d deposited",
				id, hand, total, deposited)
		}
	}
	logger.Info("table done", "table", id, "deposited", deposited)
	return nil
}

// playHand drives one hand to completion and tops busted seats back
// up, returning the chips deposited by top-ups.
func playHand(svc *engine.Service, id uuid.UUID, players int, rng *mrand.Rand) (int64, error) {
	if err := svc.StartHand(id); err != nil {
		return 0, err
	}

	secrets := make(map[int][]byte, players)
	for seat := 0; seat < players; seat++ {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return 0, err
		}
		secrets[seat] = secret
		if err := svc.SubmitCommitment(id, seat, shuffle.CommitmentFor(secret)); err != nil {
			return 0, err
		}
	}
	for seat := 0; seat < players; seat++ {
		if err := svc.RevealSecret(id, seat, secrets[seat]); err != nil {
			return 0, err
		}
	}

	for {
		var (
			phase    table.Phase
			seat     int
			owed     int64
			minRaise int64
			maxBet   int64
			chips    int64
			roundBet int64
		)
		if err := svc.View(id, func(t *table.Table) {
			phase = t.Phase()
			seat = t.ActionOn()
			if seat >= 0 {
				owed = t.CallAmount(seat)
				minRaise = t.MinRaise()
				roundBet = t.RoundBet(seat)
				maxBet = roundBet + owed
				chips = t.SeatInfo(seat).Chips
			}
		}); err != nil {
			return 0, err
		}
		if phase == table.PhaseWaiting {
			break
		}
		if seat < 0 {
			continue
		}

		var err error
		switch {
		case owed == 0:
			if rng.Intn(4) == 0 && chips > minRaise {
				err = svc.Act(id, seat, table.ActionRaiseTo, maxBet+minRaise)
			} else {
				err = svc.Act(id, seat, table.ActionCheck, 0)
			}
		case rng.Intn(4) == 0:
			err = svc.Act(id, seat, table.ActionFold, 0)
		case rng.Intn(8) == 0 && roundBet+chips > maxBet+minRaise:
			err = svc.Act(id, seat, table.ActionRaiseTo, maxBet+minRaise)
		default:
			err = svc.Act(id, seat, table.ActionCall, 0)
		}
		if err != nil {
			return 0, err
		}
	}

	// Refill busted stacks so the next hand can start.
	var topUps int64
	for seat := 0; seat < players; seat++ {
		var chips int64
		var max int64
		if err := svc.View(id, func(t *table.Table) {
			chips = t.SeatInfo(seat).Chips
			max = t.Config().MaxBuyIn
		}); err != nil {
			return 0, err
		}
		if chips == 0 {
			if err := svc.TopUp(id, seat, max); err != nil {
				return 0, err
			}
			topUps += max
		}
	}
	return topUps, nil
}

type EvalCmd struct {
	Cards []string `arg:"" help:"Seven cards in two-letter notation, e.g. As Kd Qh Js Tc 2d 3h"`
}

func (cmd *EvalCmd) Run(logger *log.Logger) error {
	if len(cmd.Cards) != 7 {
		return fmt.Errorf("want 7 cards, got %d", len(cmd.Cards))
	}
	var hand [7]poker.Card
	for i, notation := range cmd.Cards {
		card, err := poker.ParseCard(notation)
		if err != nil {
			return err
		}
		hand[i] = card
	}

	rank := poker.Evaluate7(hand)
	fmt.Printf("%s  category=%d tiebreak=%#x\n",
		rank.Category, rank.Category, rank.Tiebreak)
	return nil
}

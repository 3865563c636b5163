package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// eventConsumer is the part of *kafka.Consumer used by `events tail`.
type eventConsumer interface {
	Subscribe(topic string, handler kafka.MessageHandler)
	Start(ctx context.Context) error
	Close() error
}

// newEventConsumer builds the Kafka consumer.  Tests replace it.
var newEventConsumer = func(cfg kafka.ConsumerConfig, logger logging.Logger) (eventConsumer, error) {
	c, err := kafka.NewConsumer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewEventsCmd groups commands that read the view event stream.
func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the view.computed event stream",
	}
	cmd.AddCommand(newEventsTailCmd())
	return cmd
}

func newEventsTailCmd() *cobra.Command {
	var (
		groupID       string
		fromBeginning bool
		maxEvents     int
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print view events as they are published",
		Example: "  trilemma events tail\n  trilemma events tail --from-beginning --max 10 -o json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			kc := cliCtx.Config.Kafka
			if len(kc.Brokers) == 0 {
				return errors.New(errors.ErrCodeValidation, "kafka brokers are not configured")
			}
			if groupID == "" {
				groupID = kc.GroupID
			}
			offset := "latest"
			if fromBeginning {
				offset = "earliest"
			}

			consumer, err := newEventConsumer(kafka.ConsumerConfig{
				Brokers:         kc.Brokers,
				GroupID:         groupID,
				Topics:          []string{kc.Topic},
				AutoOffsetReset: offset,
				SecurityConfig:  kc.SecurityConfig,
			}, cliCtx.Logger)
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			printer := &eventPrinter{cmd: cmd, json: cliCtx.OutputFormat == "json", max: maxEvents, done: cancel}
			consumer.Subscribe(kc.Topic, printer.handle)
			if err := consumer.Start(ctx); err != nil {
				return err
			}
			cliCtx.Logger.Info("tailing view events",
				logging.String("topic", kc.Topic),
				logging.String("group", groupID))

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "consumer group (default: kafka.group_id)")
	cmd.Flags().BoolVar(&fromBeginning, "from-beginning", false, "start from the oldest retained event")
	cmd.Flags().IntVar(&maxEvents, "max", 0, "stop after this many events (0 = until interrupted)")
	return cmd
}

// eventPrinter writes one line per view event.
type eventPrinter struct {
	cmd  *cobra.Command
	json bool
	max  int
	done context.CancelFunc

	mu    sync.Mutex
	count int
}

func (p *eventPrinter) handle(_ context.Context, msg *kafka.Message) error {
	env, err := kafka.DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	var evt dashboard.ViewComputedEvent
	if err := env.DecodePayload(&evt); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.max > 0 && p.count >= p.max {
		return nil
	}
	out := p.cmd.OutOrStdout()
	if p.json {
		line, err := json.Marshal(&evt)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event")
		}
		fmt.Fprintln(out, string(line))
	} else {
		fmt.Fprintln(out, formatEvent(&evt))
	}
	p.count++
	if p.max > 0 && p.count >= p.max {
		p.done()
	}
	return nil
}

func formatEvent(evt *dashboard.ViewComputedEvent) string {
	ideal := dashboard.Placeholder
	if evt.GenericIdealDeg != nil {
		ideal = dashboard.FormatDegrees(*evt.GenericIdealDeg)
	}
	undefined := "-"
	if len(evt.UndefinedAngles) > 0 {
		undefined = strings.Join(evt.UndefinedAngles, ",")
	}
	return fmt.Sprintf("%s  %s %s  (%.2f, %.2f, %.2f)  generic/ideal %s  undefined: %s",
		evt.ComputedAt.Format("2006-01-02T15:04:05Z07:00"),
		evt.State, evt.Year,
		evt.Equity, evt.Security, evt.Environmental,
		ideal, undefined)
}

//Personal.AI order the ending

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/jeevanrakth/rakth-store.git/internal/kafka"
	"github.com/jeevanrakth/rakth-store.git/internal/redisx"
	"github.com/jeevanrakth/rakth-store.git/internal/store"
)

// Recorder: bagian store.NotificationRepo yang dipakai service ini.
type Recorder interface {
	RecordOrderPlaced(ctx context.Context, eventID, orderID, userID, body string) (bool, error)
	SudahTercatat(ctx context.Context, eventID string) (bool, error)
}

type Service struct {
	Repo        Recorder
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderPlaced dipasang sebagai handler consumer. Return error = offset
// tidak di-commit, pesan akan di-redeliver.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env store.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != store.EventOrderPlaced {
		return nil // ignore
	}

	// dedup via Redis (pakai event_id); redis down bukan alasan drop event,
	// DB yang jadi kebenaran lewat ON CONFLICT
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[store.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	// short-circuit kalau event ini sudah pernah dicatat
	if done, _ := s.Repo.SudahTercatat(ctx, env.EventID); done {
		return nil
	}

	body := fmt.Sprintf("order %s placed: product %s x%d, total %s (ref %s)",
		p.OrderID, p.ProductID, p.Qty, p.Total, p.PaymentReference)
	inserted, err := s.Repo.RecordOrderPlaced(ctx, env.EventID, p.OrderID, p.UserID, body)
	if err != nil {
		return err
	}
	if inserted {
		log.Printf("%s: notification recorded: order=%s user=%s", s.ServiceName, p.OrderID, p.UserID)
	}
	return nil
}

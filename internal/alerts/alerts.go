// Package alerts emails low-stock warnings and keeps a daily event log
// in redis so a summary can be sent at end of day.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/stockmanager/backend/internal/config"
	"github.com/stockmanager/backend/internal/models"
)

const DailyAlertLogKey = "alerts:lowstock:daily"

type AlertEvent struct {
	ProductID int       `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Threshold int       `json:"threshold"`
	Time      time.Time `json:"time"`
}

// Service sends low-stock alert emails and records the events in redis.
// It satisfies ledger.LowStockNotifier.
type Service struct {
	cfg config.SMTPConfig
	rdb *redis.Client
}

func NewService(cfg config.SMTPConfig, rdb *redis.Client) *Service {
	return &Service{cfg: cfg, rdb: rdb}
}

// NotifyLowStock is called after a committed stock change dropped a
// product below its threshold. The email goes out asynchronously so a
// slow SMTP server never delays the request that triggered it.
func (s *Service) NotifyLowStock(product models.Product) {
	subject := fmt.Sprintf("LOW STOCK: %s", product.Name)
	body := fmt.Sprintf("Product: %s (id %d)\nQuantity: %d\nThreshold: %d\nTime: %s",
		product.Name, product.ID, product.Quantity, product.Threshold, time.Now().Format(time.RFC3339))

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.cfg.From, s.cfg.To, subject, body)

	go func() {
		if err := s.send([]byte(msg)); err != nil {
			log.Error().Err(err).Int("product_id", product.ID).Msg("failed to send low stock alert email")
		}
	}()

	s.logEvent(product)
}

func (s *Service) send(msg []byte) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Server)
	if s.cfg.AuthDisabled {
		auth = nil
	}
	return smtp.SendMail(addr, auth, s.cfg.From, []string{s.cfg.To}, msg)
}

func (s *Service) logEvent(product models.Product) {
	if s.rdb == nil {
		return
	}
	entry := AlertEvent{
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  product.Quantity,
		Threshold: product.Threshold,
		Time:      time.Now(),
	}
	data, _ := json.Marshal(entry)
	if err := s.rdb.RPush(context.Background(), DailyAlertLogKey, data).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to record low stock event")
	}
}

// RecentEvents returns today's low-stock events, oldest first.
func (s *Service) RecentEvents(ctx context.Context) ([]AlertEvent, error) {
	if s.rdb == nil {
		return []AlertEvent{}, nil
	}
	entries, err := s.rdb.LRange(ctx, DailyAlertLogKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	events := make([]AlertEvent, 0, len(entries))
	for _, item := range entries {
		var e AlertEvent
		if err := json.Unmarshal([]byte(item), &e); err == nil {
			events = append(events, e)
		}
	}
	return events, nil
}

// StartDailySummary blocks, sending the aggregated low-stock report
// once a day just before midnight. Run it in its own goroutine.
func (s *Service) StartDailySummary(interval time.Duration) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(interval)
		}
		time.Sleep(time.Until(next))
		s.SendDailySummary()
	}
}

func (s *Service) SendDailySummary() {
	events, err := s.RecentEvents(context.Background())
	if err != nil || len(events) == 0 {
		return
	}
	_ = s.rdb.Del(context.Background(), DailyAlertLogKey).Err()

	productCounts := make(map[string]int)
	for _, e := range events {
		productCounts[e.Name]++
	}

	var sb strings.Builder
	sb.WriteString("<h2>Daily Low Stock Summary</h2>")
	sb.WriteString(fmt.Sprintf("<p>Total events: <strong>%d</strong></p>", len(events)))

	sb.WriteString("<h3>By Product</h3><ul>")
	for name, count := range productCounts {
		sb.WriteString(fmt.Sprintf("<li>%s: %d</li>", name, count))
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h3>Full Log</h3><ul>")
	for _, e := range events {
		sb.WriteString(fmt.Sprintf("<li><b>%s</b> qty %d (threshold %d) at %s</li>",
			e.Name, e.Quantity, e.Threshold, e.Time.Format(time.RFC822)))
	}
	sb.WriteString("</ul>")

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + s.cfg.To,
		"Subject: Daily Low Stock Report",
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		sb.String(),
	}, "\r\n")

	go func() {
		if err := s.send([]byte(msg)); err != nil {
			log.Error().Err(err).Msg("failed to send daily low stock summary")
		} else {
			log.Info().Msg("daily low stock summary sent")
		}
	}()
}

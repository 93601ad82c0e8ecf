package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"rental-payment-service/config"
	"rental-payment-service/internal/module/payment/models/entity"
	"rental-payment-service/internal/module/payment/models/request"
	"rental-payment-service/internal/module/payment/models/response"
	"rental-payment-service/internal/pkg/errors"
	"rental-payment-service/internal/pkg/log"
	"rental-payment-service/internal/pkg/scheduler"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	circuit "github.com/rubyist/circuitbreaker"
	"go.elastic.co/apm"
)

const processedEventPrefix = "payment:event:"

const bookingColumns = `id, car_id, user_id, pickup_location, drop_location, start_date, end_date,
	total_price, payment_status, booking_status, created_at, updated_at`

const paymentColumns = `id, booking_id, user_id, provider_session_id, provider_intent_id, provider_charge_id,
	provider_payment_method_id, amount, currency, status, failure_code, failure_message, card_brand,
	card_funding, card_last4, card_exp_month, card_exp_year, raw_payload, created_at, updated_at`

type repositories struct {
	db             *sqlx.DB
	log            log.Logger
	httpClient     *circuit.HTTPClient
	cfgUserService *config.UserServiceConfig
	redisClient    *redis.Client
	asynqClient    *asynq.Client
}

type Repositories interface {
	// http
	ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error)
	// redis
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) error
	// scheduler
	ScheduleSessionSweep(ctx context.Context, task request.ReconcileSessionTask, processAt time.Time) error
	// db
	FindBookingByID(ctx context.Context, bookingID uuid.UUID) (entity.Booking, error)
	FindBookingDetail(ctx context.Context, bookingID uuid.UUID) (entity.BookingDetail, error)
	UpsertPayment(ctx context.Context, upd entity.PaymentUpdate) (entity.Payment, entity.MergeResult, error)
	MarkBookingPaid(ctx context.Context, bookingID uuid.UUID) (bool, error)
	FindPaymentsByUserID(ctx context.Context, userID uuid.UUID) ([]entity.PaymentWithBooking, error)
}

func New(db *sqlx.DB, log log.Logger, httpClient *circuit.HTTPClient, redisClient *redis.Client, asynqClient *asynq.Client, cfgUserService *config.UserServiceConfig) Repositories {
	return &repositories{
		db:             db,
		log:            log,
		httpClient:     httpClient,
		cfgUserService: cfgUserService,
		redisClient:    redisClient,
		asynqClient:    asynqClient,
	}
}

// IsEventProcessed implements Repositories.
func (r *repositories) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := r.redisClient.Exists(ctx, processedEventPrefix+eventID).Result()
	if err != nil {
		return false, errors.InternalServerError("error check processed event")
	}
	return n > 0, nil
}

// MarkEventProcessed implements Repositories.
func (r *repositories) MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	if err := r.redisClient.Set(ctx, processedEventPrefix+eventID, time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return errors.InternalServerError("error mark processed event")
	}
	return nil
}

// ScheduleSessionSweep implements Repositories. One sweep per session; a
// second schedule for the same session is a no-op.
func (r *repositories) ScheduleSessionSweep(ctx context.Context, task request.ReconcileSessionTask, processAt time.Time) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return errors.InternalServerError("error marshal sweep task")
	}

	t := asynq.NewTask(scheduler.TypeReconcileCheckoutSession, payload,
		asynq.TaskID("reconcile:"+task.SessionID),
		asynq.ProcessAt(processAt),
		asynq.MaxRetry(5),
		asynq.Retention(24*time.Hour),
	)

	info, err := r.asynqClient.EnqueueContext(ctx, t)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		r.log.Error(ctx, "error enqueue session sweep", err)
		return errors.InternalServerError("error schedule session sweep")
	}

	r.log.Info(ctx, fmt.Sprintf("session sweep scheduled: task %s at %s", info.ID, processAt.Format(time.RFC3339)))
	return nil
}

// FindBookingByID implements Repositories.
func (r *repositories) FindBookingByID(ctx context.Context, bookingID uuid.UUID) (entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, query, bookingID)
	if err == sql.ErrNoRows {
		return entity.Booking{}, errors.NotFound("booking not found")
	}
	if err != nil {
		r.log.Error(ctx, "error find booking by id", err)
		return entity.Booking{}, errors.InternalServerError("error find booking by id")
	}
	return booking, nil
}

// FindBookingDetail implements Repositories.
func (r *repositories) FindBookingDetail(ctx context.Context, bookingID uuid.UUID) (entity.BookingDetail, error) {
	query := `SELECT b.id, b.car_id, b.user_id, b.pickup_location, b.drop_location, b.start_date, b.end_date,
		b.total_price, b.payment_status, b.booking_status, b.created_at, b.updated_at,
		COALESCE(c.name, '') AS car_name, c.image AS car_image, u.email AS user_email
		FROM bookings b
		LEFT JOIN cars c ON c.id = b.car_id
		LEFT JOIN users u ON u.id = b.user_id
		WHERE b.id = $1`
	var detail entity.BookingDetail
	err := r.db.GetContext(ctx, &detail, query, bookingID)
	if err == sql.ErrNoRows {
		return entity.BookingDetail{}, errors.NotFound("booking not found")
	}
	if err != nil {
		r.log.Error(ctx, "error find booking detail", err)
		return entity.BookingDetail{}, errors.InternalServerError("error find booking detail")
	}
	return detail, nil
}

// UpsertPayment implements Repositories. The booking row lock serializes
// every writer of the booking's payments for the life of the transaction.
func (r *repositories) UpsertPayment(ctx context.Context, upd entity.PaymentUpdate) (entity.Payment, entity.MergeResult, error) {
	span, ctx := apm.StartSpan(ctx, "repositories.UpsertPayment", "db.postgresql")
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return entity.Payment{}, entity.MergeResult{}, errors.InternalServerError("error starting transaction")
	}

	var lockedID uuid.UUID
	err = tx.GetContext(ctx, &lockedID, `SELECT id FROM bookings WHERE id = $1 FOR UPDATE`, upd.BookingID)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return entity.Payment{}, entity.MergeResult{}, errors.NotFound("booking not found")
	}
	if err != nil {
		tx.Rollback()
		r.log.Error(ctx, "error locking booking row", err)
		return entity.Payment{}, entity.MergeResult{}, errors.InternalServerError("error locking rows")
	}

	var matches []entity.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE booking_id = $1 AND (provider_session_id = $2 OR provider_intent_id = $3 OR provider_charge_id = $4)
		ORDER BY created_at ASC FOR UPDATE`
	err = tx.SelectContext(ctx, &matches, query, upd.BookingID, nullable(upd.SessionID), nullable(upd.IntentID), nullable(upd.ChargeID))
	if err != nil {
		tx.Rollback()
		r.log.Error(ctx, "error find matching payments", err)
		return entity.Payment{}, entity.MergeResult{}, errors.InternalServerError("error find matching payments")
	}

	existing, upd := entity.SelectMatch(matches, upd)
	if len(matches) > 1 {
		r.log.Warn(ctx, fmt.Sprintf("booking %s has %d payments matching one notification, merging into %s", upd.BookingID, len(matches), existing.ID))
	}

	payment, res := entity.MergePayment(existing, upd, time.Now().UTC())

	switch {
	case res.Skipped || !res.Changed:
		tx.Rollback()
		return payment, res, nil
	case res.Created:
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO payments (id, booking_id, user_id, provider_session_id, provider_intent_id, provider_charge_id,
				provider_payment_method_id, amount, currency, status, failure_code, failure_message, card_brand,
				card_funding, card_last4, card_exp_month, card_exp_year, raw_payload, created_at)
			VALUES (:id, :booking_id, :user_id, :provider_session_id, :provider_intent_id, :provider_charge_id,
				:provider_payment_method_id, :amount, :currency, :status, :failure_code, :failure_message, :card_brand,
				:card_funding, :card_last4, :card_exp_month, :card_exp_year, :raw_payload, :created_at)
		`, payment)
	default:
		_, err = tx.NamedExecContext(ctx, `
			UPDATE payments
			SET provider_session_id = :provider_session_id, provider_intent_id = :provider_intent_id,
				provider_charge_id = :provider_charge_id, provider_payment_method_id = :provider_payment_method_id,
				amount = :amount, currency = :currency, status = :status, failure_code = :failure_code,
				failure_message = :failure_message, card_brand = :card_brand, card_funding = :card_funding,
				card_last4 = :card_last4, card_exp_month = :card_exp_month, card_exp_year = :card_exp_year,
				raw_payload = :raw_payload, updated_at = :updated_at
			WHERE id = :id
		`, payment)
	}
	if err != nil {
		tx.Rollback()
		r.log.Error(ctx, "error upserting payment", err)
		return entity.Payment{}, entity.MergeResult{}, errors.InternalServerError("error upserting payment")
	}

	if err = tx.Commit(); err != nil {
		return entity.Payment{}, entity.MergeResult{}, errors.InternalServerError("error committing transaction")
	}

	return payment, res, nil
}

// MarkBookingPaid implements Repositories. It reports whether this call
// performed the Pending to Paid transition.
func (r *repositories) MarkBookingPaid(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET payment_status = $1, updated_at = NOW() WHERE id = $2 AND payment_status = $3`,
		entity.BookingPaymentPaid, bookingID, entity.BookingPaymentPending)
	if err != nil {
		r.log.Error(ctx, "error mark booking paid", err)
		return false, errors.InternalServerError("error mark booking paid")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.InternalServerError("error mark booking paid")
	}
	return n > 0, nil
}

// FindPaymentsByUserID implements Repositories. raw_payload is not selected.
func (r *repositories) FindPaymentsByUserID(ctx context.Context, userID uuid.UUID) ([]entity.PaymentWithBooking, error) {
	query := `SELECT p.id, p.booking_id, p.user_id, p.provider_session_id, p.provider_intent_id, p.provider_charge_id,
		p.provider_payment_method_id, p.amount, p.currency, p.status, p.failure_code, p.failure_message,
		p.card_brand, p.card_funding, p.card_last4, p.card_exp_month, p.card_exp_year, p.created_at, p.updated_at,
		c.name AS car_name, b.pickup_location, b.drop_location, b.start_date, b.end_date
		FROM payments p
		LEFT JOIN bookings b ON b.id = p.booking_id
		LEFT JOIN cars c ON c.id = b.car_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC`
	payments := []entity.PaymentWithBooking{}
	if err := r.db.SelectContext(ctx, &payments, query, userID); err != nil {
		r.log.Error(ctx, "error find payments by user id", err)
		return nil, errors.InternalServerError("error find payments by user id")
	}
	return payments, nil
}

func (r *repositories) ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error) {
	// http call to user service
	endpoint := fmt.Sprintf("http://%s:%s/api/private/token/validate?token=%s", r.cfgUserService.Host, r.cfgUserService.Port, url.QueryEscape(token))
	resp, err := r.httpClient.Get(endpoint)
	if err != nil {
		r.log.Error(ctx, "error call user service", err)
		return response.UserServiceValidate{}, errors.ServiceUnavailable("user service unavailable")
	}

	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		r.log.Error(ctx, "Invalid token", resp.StatusCode)
		return response.UserServiceValidate{}, errors.UnauthorizedError("invalid token")
	}

	var respData response.UserServiceValidate
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return response.UserServiceValidate{}, errors.InternalServerError("error decode user service response")
	}

	if !respData.IsValid {
		r.log.Error(ctx, "Invalid token", resp.StatusCode)
		return response.UserServiceValidate{}, errors.UnauthorizedError("invalid token")
	}

	return respData, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage is the durable-store contract consumed by the conversation engine,
// the matchmaking coordinator, and the API handlers. The stores are the only
// synchronization point between concurrent event tasks, so every
// exists-then-insert sequence is an atomic insert-if-absent backed by a
// unique constraint, never a separate check followed by an insert.
type Storage interface {
	SaveUserIfNotExists(user *models.User) (*models.User, error)
	GetUserByTelegramID(telegramID int64) (*models.User, error)
	GetUserByHandle(handle string) (*models.User, error)
	PromoteShadowUser(handle string, telegramID int64, firstName, lastName string) (*models.User, error)
	SetConversationState(identity models.Identity, state models.ConversationState) error
	GetConversationState(identity models.Identity) (models.ConversationState, error)

	SavePendingIntentIfNotExists(intent *models.PendingIntent) error
	FindPendingIntentFor(identity models.Identity) (*models.PendingIntent, error)
	DeletePendingIntent(intentID uint) error
	ListPendingIntents() ([]models.PendingIntent, error)

	SaveConnectionIfNotExists(userRef, partnerRef string) (*models.Connection, error)
	SetConnectionState(userRef, partnerRef string, state models.ConnectionState) error
	StampConnectionTimelog(connectionID uint, stamp models.ConnectionTimelog) error
	GetLatestConnection(userRef, partnerRef string) (*models.Connection, error)
	ListConnectionsForUser(refs []string) ([]models.Connection, error)
	ListConnectionsByStates(states []models.ConnectionState) ([]models.Connection, error)

	PublishMatchEvent(event models.MatchEvent) error
}

// Service implements Storage over PostgreSQL (GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUserIfNotExists inserts the user unless a record for its identity
// already exists, and returns the persisted record either way. The insert is
// a single ON CONFLICT DO NOTHING statement, safe against two concurrent
// events for the same identity.
func (s *Service) SaveUserIfNotExists(user *models.User) (*models.User, error) {
	if user.TelegramID == nil && user.Handle == "" {
		return nil, errors.New("either handle or telegram id should be specified")
	}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoNothing: true,
	}
	if user.TelegramID == nil {
		// Shadow record: the only key is the handle, whose uniqueness is
		// enforced by a partial index over non-empty values.
		conflict = clause.OnConflict{
			Columns:     []clause.Column{{Name: "handle"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "handle <> ''"}}},
			DoNothing:   true,
		}
	}

	if err := s.DB.Clauses(conflict).Create(user).Error; err != nil {
		log.Printf("ERROR: Failed to save user %s: %v", user.Identity().Key(), err)
		return nil, err
	}

	if user.TelegramID != nil {
		return s.GetUserByTelegramID(*user.TelegramID)
	}
	return s.GetUserByHandle(user.Handle)
}

// GetUserByTelegramID returns the user with the given numeric ID, or nil
// without error when no such record exists.
func (s *Service) GetUserByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	err := s.DB.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByHandle looks a user up by handle. The sigil is stripped before
// matching the stored raw handle.
func (s *Service) GetUserByHandle(handle string) (*models.User, error) {
	handle = models.NormalizeHandle(handle)
	if handle == "" {
		return nil, nil
	}
	var user models.User
	err := s.DB.Where("lower(handle) = lower(?)", handle).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// PromoteShadowUser upgrades a shadow record in place the moment its owner
// first appears: the numeric ID is attached and the display names are filled
// in. Records that already carry a numeric ID are left alone; two fully
// known records are never merged.
func (s *Service) PromoteShadowUser(handle string, telegramID int64, firstName, lastName string) (*models.User, error) {
	handle = models.NormalizeHandle(handle)
	updates := map[string]interface{}{
		"telegram_id": telegramID,
		"first_name":  firstName,
		"last_name":   lastName,
	}
	err := s.DB.Model(&models.User{}).
		Where("lower(handle) = lower(?) AND telegram_id IS NULL", handle).
		Updates(updates).Error
	if err != nil {
		log.Printf("ERROR: Failed to promote shadow user @%s: %v", handle, err)
		return nil, err
	}
	s.invalidateStateCache(models.Identity{Handle: handle})
	return s.GetUserByTelegramID(telegramID)
}

// SetConversationState overwrites the user's conversation state (transitions
// are idempotent overwrites) and invalidates the state cache.
func (s *Service) SetConversationState(identity models.Identity, state models.ConversationState) error {
	query := s.DB.Model(&models.User{})
	switch {
	case identity.ID != nil:
		query = query.Where("telegram_id = ?", *identity.ID)
	case identity.Handle != "":
		query = query.Where("lower(handle) = lower(?)", models.NormalizeHandle(identity.Handle))
	default:
		return errors.New("either handle or telegram id should be specified")
	}

	if err := query.Update("conversation_state", state).Error; err != nil {
		log.Printf("ERROR: Failed to set conversation state for %s: %v", identity.Key(), err)
		return err
	}
	s.invalidateStateCache(identity)
	return nil
}

// GetConversationState reads the user's conversation state through the Redis
// cache. The cache is never authoritative: every write path deletes the key.
// Unknown identities are in the initial DEFAULT state.
func (s *Service) GetConversationState(identity models.Identity) (models.ConversationState, error) {
	key := config.StateCachePrefix + identity.Key()
	if s.Redis != nil {
		if cached, err := s.Redis.Get(s.Ctx, key).Result(); err == nil && cached != "" {
			return models.ConversationState(cached), nil
		}
	}

	var user *models.User
	var err error
	if identity.ID != nil {
		user, err = s.GetUserByTelegramID(*identity.ID)
	} else {
		user, err = s.GetUserByHandle(identity.Handle)
	}
	if err != nil {
		return "", err
	}
	if user == nil {
		return models.StateDefault, nil
	}

	if s.Redis != nil {
		if err := s.Redis.Set(s.Ctx, key, string(user.ConversationState), config.StateCacheTTL).Err(); err != nil {
			log.Printf("WARN: Failed to cache conversation state for %s: %v", identity.Key(), err)
		}
	}
	return user.ConversationState, nil
}

func (s *Service) invalidateStateCache(identity models.Identity) {
	if s.Redis == nil {
		return
	}
	keys := []string{config.StateCachePrefix + identity.Key()}
	if identity.Handle != "" {
		keys = append(keys, config.StateCachePrefix+models.Sigil+models.NormalizeHandle(identity.Handle))
	}
	if err := s.Redis.Del(s.Ctx, keys...).Err(); err != nil {
		log.Printf("WARN: Failed to invalidate state cache for %s: %v", identity.Key(), err)
	}
}

// SavePendingIntentIfNotExists inserts the intent unless one already exists
// for the same identity. The unique index on the identity key keeps the
// at-most-one-intent-per-identity invariant under concurrency.
func (s *Service) SavePendingIntentIfNotExists(intent *models.PendingIntent) error {
	if intent.TelegramID == nil && intent.Handle == "" {
		return errors.New("either handle or telegram id should be specified")
	}
	intent.Handle = models.NormalizeHandle(intent.Handle)
	if intent.IdentityKey == "" {
		intent.IdentityKey = intent.Identity().Key()
	}

	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity_key"}},
		DoNothing: true,
	}).Create(intent).Error
	if err != nil {
		log.Printf("ERROR: Failed to save pending intent for %s: %v", intent.IdentityKey, err)
	}
	return err
}

// FindPendingIntentFor returns the outstanding intent addressed to the
// identity by either of its keys, or nil when none is waiting.
func (s *Service) FindPendingIntentFor(identity models.Identity) (*models.PendingIntent, error) {
	if !identity.Specified() {
		return nil, nil
	}

	query := s.DB.Model(&models.PendingIntent{})
	switch {
	case identity.ID != nil && identity.Handle != "":
		query = query.Where("telegram_id = ? OR lower(handle) = lower(?)",
			*identity.ID, models.NormalizeHandle(identity.Handle))
	case identity.ID != nil:
		query = query.Where("telegram_id = ?", *identity.ID)
	default:
		query = query.Where("lower(handle) = lower(?)", models.NormalizeHandle(identity.Handle))
	}

	var intent models.PendingIntent
	err := query.First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// DeletePendingIntent consumes an intent. Called exactly once, the moment
// the awaited identity's first inbound event arrives.
func (s *Service) DeletePendingIntent(intentID uint) error {
	return s.DB.Delete(&models.PendingIntent{}, intentID).Error
}

// ListPendingIntents returns all outstanding intents, oldest first.
func (s *Service) ListPendingIntents() ([]models.PendingIntent, error) {
	var intents []models.PendingIntent
	if err := s.DB.Order("created_at asc").Find(&intents).Error; err != nil {
		return nil, err
	}
	return intents, nil
}

// SaveConnectionIfNotExists records a match attempt for the pair unless a row
// already exists, creates its timelog row, and returns the current
// connection. A fresh row starts in UNDEFINED until the coordinator advances
// it.
func (s *Service) SaveConnectionIfNotExists(userRef, partnerRef string) (*models.Connection, error) {
	conn := models.Connection{
		UserRef:    userRef,
		PartnerRef: partnerRef,
		State:      models.ConnectionUndefined,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_ref"}, {Name: "partner_ref"}},
		DoNothing: true,
	}).Create(&conn).Error
	if err != nil {
		log.Printf("ERROR: Failed to save connection %s -> %s: %v", userRef, partnerRef, err)
		return nil, err
	}

	current, err := s.GetLatestConnection(userRef, partnerRef)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.New("connection row missing after insert")
	}

	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "connection_id"}},
		DoNothing: true,
	}).Create(&models.ConnectionTimelog{ConnectionID: current.ID}).Error
	if err != nil {
		log.Printf("ERROR: Failed to save connection timelog for %d: %v", current.ID, err)
		return nil, err
	}
	return current, nil
}

// SetConnectionState updates the lifecycle state of the pair's connection.
func (s *Service) SetConnectionState(userRef, partnerRef string, state models.ConnectionState) error {
	return s.DB.Model(&models.Connection{}).
		Where("user_ref = ? AND partner_ref = ?", userRef, partnerRef).
		Update("connection_state", state).Error
}

// StampConnectionTimelog sets the provided timestamps on the connection's
// timelog. Each column is written through COALESCE, so a timestamp already
// present is never overwritten.
func (s *Service) StampConnectionTimelog(connectionID uint, stamp models.ConnectionTimelog) error {
	updates := map[string]interface{}{}
	if stamp.TimeRequested != nil {
		updates["time_requested"] = gorm.Expr("COALESCE(time_requested, ?)", *stamp.TimeRequested)
	}
	if stamp.TimeConnected != nil {
		updates["time_connected"] = gorm.Expr("COALESCE(time_connected, ?)", *stamp.TimeConnected)
	}
	if stamp.TimeCanceled != nil {
		updates["time_canceled"] = gorm.Expr("COALESCE(time_canceled, ?)", *stamp.TimeCanceled)
	}
	if stamp.TimeDeclined != nil {
		updates["time_declined"] = gorm.Expr("COALESCE(time_declined, ?)", *stamp.TimeDeclined)
	}
	if stamp.TimeClosed != nil {
		updates["time_closed"] = gorm.Expr("COALESCE(time_closed, ?)", *stamp.TimeClosed)
	}
	if len(updates) == 0 {
		return nil
	}

	return s.DB.Model(&models.ConnectionTimelog{}).
		Where("connection_id = ?", connectionID).
		Updates(updates).Error
}

// GetLatestConnection returns the current connection for the pair (the most
// recently created row), or nil when the pair has never attempted a match.
func (s *Service) GetLatestConnection(userRef, partnerRef string) (*models.Connection, error) {
	var conn models.Connection
	err := s.DB.Preload("Timelog").
		Where("user_ref = ? AND partner_ref = ?", userRef, partnerRef).
		Order("id DESC").
		First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// ListConnectionsForUser returns every connection where any of the given
// identity keys appears on either side.
func (s *Service) ListConnectionsForUser(refs []string) ([]models.Connection, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	var conns []models.Connection
	err := s.DB.Preload("Timelog").
		Where("user_ref = ANY(?) OR partner_ref = ANY(?)", pq.Array(refs), pq.Array(refs)).
		Order("id asc").
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}

// ListConnectionsByStates returns all connections currently in any of the
// given lifecycle states.
func (s *Service) ListConnectionsByStates(states []models.ConnectionState) ([]models.Connection, error) {
	if len(states) == 0 {
		return nil, nil
	}
	values := make([]string, len(states))
	for i, st := range states {
		values[i] = string(st)
	}
	var conns []models.Connection
	err := s.DB.Preload("Timelog").
		Where("connection_state = ANY(?)", pq.Array(values)).
		Order("id asc").
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}

// PublishMatchEvent publishes a lifecycle event to the Redis Pub/Sub channel
// feeding the live observer endpoint. A nil Redis client (admin CLI) makes
// this a no-op.
func (s *Service) PublishMatchEvent(event models.MatchEvent) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, config.MatchEventsChannel, string(payload)).Err()
}

// SubscribeMatchEvents subscribes to the live event channel.
func (s *Service) SubscribeMatchEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, config.MatchEventsChannel)
}

// internal/app/store/otp/store.go
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeLength is the number of digits in a passcode.
	CodeLength = 4
	// DefaultExpiry is how long a passcode stays valid.
	DefaultExpiry = 10 * time.Minute
	BcryptCost    = 10
	// MaxVerifyAttempts caps verification attempts per issued code.
	MaxVerifyAttempts = 5
	// MaxResends caps resends within ResendWindow.
	MaxResends   = 3
	ResendWindow = 10 * time.Minute
)

var (
	// ErrNotFound is returned when there is no live passcode for the email.
	ErrNotFound        = errors.New("passcode not found or expired")
	ErrInvalidCode     = errors.New("invalid passcode")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrTooManyResends  = errors.New("too many resend requests")
)

// Code is a pending one-time passcode. At most one exists per email.
type Code struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Email       string             `bson:"email"`
	CodeHash    string             `bson:"code_hash"`
	ExpiresAt   time.Time          `bson:"expires_at"` // TTL index field
	CreatedAt   time.Time          `bson:"created_at"`
	Attempts    int                `bson:"attempts"`
	ResendCount int                `bson:"resend_count"`
	WindowStart time.Time          `bson:"window_start"`
}

type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store. A non-positive expiry falls back to DefaultExpiry.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection("otp_codes"), expiry: expiry}
}

func (s *Store) Expiry() time.Duration { return s.expiry }

// EnsureIndexes creates the TTL index that expires codes and the unique
// per-email index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_otp_expires_ttl").SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_otp_email").SetUnique(true),
		},
	})
	return err
}

// Issued is the result of Create.
type Issued struct {
	Code        string // plain code to email
	ResendCount int
}

// Create issues a fresh code for email, replacing any pending one.
// When isResend is true the call counts against the resend limit.
func (s *Store) Create(ctx context.Context, email string, isResend bool) (*Issued, error) {
	email = normalize.Email(email)
	now := time.Now()

	var existing Code
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	found := err == nil
	inWindow := found && now.Before(existing.WindowStart.Add(ResendWindow))

	if isResend && inWindow && existing.ResendCount >= MaxResends {
		return nil, ErrTooManyResends
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash code: %w", err)
	}

	resendCount := 0
	windowStart := now
	if inWindow {
		windowStart = existing.WindowStart
		resendCount = existing.ResendCount
		if isResend {
			resendCount++
		}
	}

	doc := Code{
		Email:       email,
		CodeHash:    string(hash),
		ExpiresAt:   now.Add(s.expiry),
		CreatedAt:   now,
		ResendCount: resendCount,
		WindowStart: windowStart,
	}
	_, err = s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$set":         doc,
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}

	return &Issued{Code: code, ResendCount: resendCount}, nil
}

// Verify checks code against the live passcode for email and deletes it on
// success. Every attempt, right or wrong, counts toward MaxVerifyAttempts.
func (s *Store) Verify(ctx context.Context, email, code string) error {
	email = normalize.Email(email)

	var c Code
	err := s.c.FindOne(ctx, bson.M{
		"email":      email,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	if c.Attempts >= MaxVerifyAttempts {
		return ErrTooManyAttempts
	}
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$inc": bson.M{"attempts": 1}}); err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) != nil {
		return ErrInvalidCode
	}

	_, err = s.c.DeleteOne(ctx, bson.M{"_id": c.ID})
	return err
}

// DeleteByEmail removes any pending passcode for email.
func (s *Store) DeleteByEmail(ctx context.Context, email string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"email": normalize.Email(email)})
	return err
}

// generateCode returns a uniformly random code in 1000..9999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

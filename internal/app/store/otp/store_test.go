package otp_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/dalemusser/campushub/internal/app/store/otp"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNew_Expiry(t *testing.T) {
	db := testutil.SetupTestDB(t)

	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"zero uses default", 0, otp.DefaultExpiry},
		{"negative uses default", -time.Minute, otp.DefaultExpiry},
		{"custom", 30 * time.Minute, 30 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := otp.New(db, tt.in).Expiry(); got != tt.want {
				t.Errorf("Expiry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_Create_CodeFormat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 20; i++ {
		res, err := store.Create(ctx, "a@x.my", false)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if len(res.Code) != otp.CodeLength {
			t.Fatalf("code %q has length %d, want %d", res.Code, len(res.Code), otp.CodeLength)
		}
		n, err := strconv.Atoi(res.Code)
		if err != nil || n < 1000 || n > 9999 {
			t.Fatalf("code %q is not in 1000..9999", res.Code)
		}
	}
}

func TestStore_Create_ReplacesPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "a@x.my", false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := store.Create(ctx, "A@X.MY", true)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := db.Collection("otp_codes").CountDocuments(ctx, bson.M{"email": "a@x.my"})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pending code, got %d", n)
	}

	if err := store.Verify(ctx, "a@x.my", second.Code); err != nil {
		t.Errorf("Verify with newest code failed: %v", err)
	}
}

func TestStore_Verify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res, err := store.Create(ctx, "a@x.my", false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	wrong := "0000"
	if err := store.Verify(ctx, "a@x.my", wrong); !errors.Is(err, otp.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if err := store.Verify(ctx, "a@x.my", res.Code); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	// single use
	if err := store.Verify(ctx, "a@x.my", res.Code); !errors.Is(err, otp.ErrNotFound) {
		t.Errorf("expected ErrNotFound after use, got %v", err)
	}
}

func TestStore_Verify_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res, err := store.Create(ctx, "a@x.my", false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err = db.Collection("otp_codes").UpdateOne(ctx,
		bson.M{"email": "a@x.my"},
		bson.M{"$set": bson.M{"expires_at": time.Now().Add(-time.Minute)}})
	if err != nil {
		t.Fatalf("UpdateOne failed: %v", err)
	}

	if err := store.Verify(ctx, "a@x.my", res.Code); !errors.Is(err, otp.ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired code, got %v", err)
	}
}

func TestStore_Verify_TooManyAttempts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res, err := store.Create(ctx, "a@x.my", false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	wrong := "0000"
	for i := 0; i < otp.MaxVerifyAttempts; i++ {
		if err := store.Verify(ctx, "a@x.my", wrong); !errors.Is(err, otp.ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i+1, err)
		}
	}
	if err := store.Verify(ctx, "a@x.my", res.Code); !errors.Is(err, otp.ErrTooManyAttempts) {
		t.Errorf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestStore_Create_TooManyResends(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "a@x.my", false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for i := 1; i <= otp.MaxResends; i++ {
		res, err := store.Create(ctx, "a@x.my", true)
		if err != nil {
			t.Fatalf("resend %d failed: %v", i, err)
		}
		if res.ResendCount != i {
			t.Errorf("ResendCount = %d, want %d", res.ResendCount, i)
		}
	}
	if _, err := store.Create(ctx, "a@x.my", true); !errors.Is(err, otp.ErrTooManyResends) {
		t.Errorf("expected ErrTooManyResends, got %v", err)
	}
}

func TestStore_DeleteByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res, err := store.Create(ctx, "a@x.my", false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.DeleteByEmail(ctx, "a@x.my"); err != nil {
		t.Fatalf("DeleteByEmail failed: %v", err)
	}
	if err := store.Verify(ctx, "a@x.my", res.Code); !errors.Is(err, otp.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

package txn

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("connection reset by peer"), false},
		{"code 20 standalone", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"}, true},
		{"code 51", mongo.CommandError{Code: 51}, true},
		{"code 263", mongo.CommandError{Code: 263}, true},
		{"duplicate key code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"wrapped command error", fmt.Errorf("join: %w", mongo.CommandError{Code: 20}), true},
		{"replica set message", errors.New("Transaction failed: not a REPLICA SET member"), true},
		{"session not supported", errors.New("sessions are not supported by this deployment"), true},
		{"transaction in session", errors.New("cannot start transaction in current session state"), true},
		{"illegal operation", errors.New("Illegal operation during transaction"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

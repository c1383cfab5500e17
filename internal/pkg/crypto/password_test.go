package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	pin := "1234"

	hash, err := HashPasswordWithCost(pin, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost failed: %v", err)
	}

	if hash == "" {
		t.Fatal("Hash should not be empty")
	}

	if hash == pin {
		t.Fatal("Hash should not equal plain pin")
	}

	if !IsHash(hash) {
		t.Fatal("Hash should be recognised as bcrypt")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPasswordWithCost("1234", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost failed: %v", err)
	}

	if !CheckPassword("1234", hash) {
		t.Fatal("CheckPassword should return true for correct pin")
	}

	if CheckPassword("4321", hash) {
		t.Fatal("CheckPassword should return false for wrong pin")
	}
}

func TestHashPasswordDifferentHashes(t *testing.T) {
	hash1, err := HashPasswordWithCost("1234", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("First hash failed: %v", err)
	}

	hash2, err := HashPasswordWithCost("1234", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Second hash failed: %v", err)
	}

	// Random salt makes every hash distinct
	if hash1 == hash2 {
		t.Fatal("Two hashes of the same pin should be different")
	}

	if !CheckPassword("1234", hash1) || !CheckPassword("1234", hash2) {
		t.Fatal("Both hashes should validate the pin")
	}
}

func TestHashPasswordWithCost_OutOfRangeFallsBack(t *testing.T) {
	hash, err := HashPasswordWithCost("1234", 99)
	if err != nil {
		t.Fatalf("HashPasswordWithCost failed: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost failed: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}

func TestIsHash(t *testing.T) {
	if IsHash("1234") {
		t.Fatal("plain pin should not be treated as a hash")
	}
	if IsHash("") {
		t.Fatal("empty string should not be treated as a hash")
	}
}

func TestHashPasswordLongSecret(t *testing.T) {
	long := strings.Repeat("9", 73)

	hash, err := HashPasswordWithCost(long, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost failed for a 73 byte pin: %v", err)
	}

	if !CheckPassword(long, hash) {
		t.Fatal("CheckPassword should accept the long pin")
	}

	if CheckPassword(strings.Repeat("9", 74), hash) {
		t.Fatal("CheckPassword should reject a different long pin")
	}
}

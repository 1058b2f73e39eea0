package utils

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = bcrypt.DefaultCost

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

package server

import "golang.org/x/crypto/bcrypt"

// hashPassword はパスワードをbcryptでハッシュ化する。
func hashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// verifyPassword は平文パスワードとハッシュの一致を検証する。
func verifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

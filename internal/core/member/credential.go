package member

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// encoding は保存済み認証情報の符号化方式です。
// 方式ごとに構造的な判定と照合を持ち、方式追加時に認証処理側の変更を不要にします。
type encoding interface {
	// Detects は stored がこの方式で符号化されているかを構造的に判定します。
	Detects(stored string) bool
	// Matches は candidate が stored と一致するかを返します。内部エラーは不一致として扱います。
	Matches(candidate, stored string) bool
}

const (
	bcryptPrefix    = "$2"
	bcryptMinLength = 50
)

// bcryptEncoding は bcrypt によるソルト付きハッシュです。書き込み経路はこの方式のみを保存します。
type bcryptEncoding struct{}

func (bcryptEncoding) Detects(stored string) bool {
	return strings.HasPrefix(stored, bcryptPrefix) && len(stored) >= bcryptMinLength
}

func (bcryptEncoding) Matches(candidate, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

// plaintextEncoding は移行前の平文保存です。全行がハッシュ化されるまでの読み取り互換であり、
// 新規保存には使用しません。
type plaintextEncoding struct{}

func (plaintextEncoding) Detects(string) bool { return true }

func (plaintextEncoding) Matches(candidate, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1
}

// encodings は判定順に評価されます。平文はフォールバックとして必ず末尾に置きます。
var encodings = []encoding{bcryptEncoding{}, plaintextEncoding{}}

// Verify は candidate が保存済み認証情報 stored と一致するかを返します。
// エラーは返しません。符号化の破損などはすべて不一致(false)になります。
func Verify(candidate, stored string) bool {
	for _, enc := range encodings {
		if enc.Detects(stored) {
			return enc.Matches(candidate, stored)
		}
	}
	return false
}

// HashSecret は保存用のハッシュを生成します。
func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("member: hash secret: %w", err)
	}
	return string(hashed), nil
}

package member

import "errors"

var (
	// ErrInvalidCredentials はログイン ID 不明と secret 不一致の両方で返却されます。
	// アカウントの存在有無を呼び出し側に漏らさないため、両者は区別しません。
	ErrInvalidCredentials = errors.New("member: invalid credentials")
	// ErrNoLinkedEmployee は認証には成功したが Employee に紐づかない場合に返却されます。
	ErrNoLinkedEmployee = errors.New("member: no linked employee")
	// ErrMemberNotFound はアカウントが存在しない場合に返却されます。
	ErrMemberNotFound = errors.New("member: not found")
	// ErrLoginIDAlreadyExists はログイン ID 重複時に返却されます。
	ErrLoginIDAlreadyExists = errors.New("member: login id already exists")
	// ErrInvalidLoginID はログイン ID が不正な場合に返却されます。
	ErrInvalidLoginID = errors.New("member: invalid login id")
)

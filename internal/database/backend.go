package database

import (
	"context"
)

// Op is a single key mutation. When Delete is set Value is ignored.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

func PutOp(key string, value []byte) Op { return Op{Key: key, Value: value} }

func DeleteOp(key string) Op { return Op{Key: key, Delete: true} }

// Backend stores opaque documents under string keys. Write applies all ops
// atomically where the backend supports it.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, ops ...Op) error
	Ping(ctx context.Context) error
	Close() error
}

func Put(ctx context.Context, b Backend, key string, value []byte) error {
	return b.Write(ctx, PutOp(key, value))
}

func Delete(ctx context.Context, b Backend, key string) error {
	return b.Write(ctx, DeleteOp(key))
}

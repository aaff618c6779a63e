// Package redis wraps go-redis connection setup with retry logic.
package redis

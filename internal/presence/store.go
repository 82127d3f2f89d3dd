package presence

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// GroupStore defines the set operations the registry needs. Groups are
// membership sets keyed by name; an index set per member records which
// groups the member joined, so a disconnect can drain them all.
type GroupStore interface {
	// AddMember adds a member to a group.
	AddMember(ctx context.Context, key, member string) error

	// RemoveMember removes a member from a group.
	RemoveMember(ctx context.Context, key, member string) error

	// Members returns the current members of a group.
	Members(ctx context.Context, key string) ([]string, error)

	// IsMember reports whether a member is in a group.
	IsMember(ctx context.Context, key, member string) (bool, error)

	// Count returns the number of members in a group.
	Count(ctx context.Context, key string) (int64, error)

	// Link adds the member to a group and records the group in the
	// member's index in one atomic step.
	Link(ctx context.Context, group, index, member string) error

	// Unlink removes the member from a group and the group from the
	// member's index in one atomic step.
	Unlink(ctx context.Context, group, index, member string) error

	// Drain removes the member from every named group and deletes the
	// member's index in one atomic step.
	Drain(ctx context.Context, index, member string, groups []string) error
}

// RedisGroups implements GroupStore on Redis sets. Multi-key mutations run
// through TxPipeline so a member's index never disagrees with the groups.
type RedisGroups struct {
	client *redis.Client
}

// NewRedisGroups creates a new RedisGroups.
func NewRedisGroups(client *redis.Client) *RedisGroups {
	return &RedisGroups{client: client}
}

func (s *RedisGroups) AddMember(ctx context.Context, key, member string) error {
	return s.client.SAdd(ctx, key, member).Err()
}

func (s *RedisGroups) RemoveMember(ctx context.Context, key, member string) error {
	return s.client.SRem(ctx, key, member).Err()
}

func (s *RedisGroups) Members(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, key).Result()
}

func (s *RedisGroups) IsMember(ctx context.Context, key, member string) (bool, error) {
	return s.client.SIsMember(ctx, key, member).Result()
}

func (s *RedisGroups) Count(ctx context.Context, key string) (int64, error) {
	return s.client.SCard(ctx, key).Result()
}

func (s *RedisGroups) Link(ctx context.Context, group, index, member string) error {
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, group, member)
	pipe.SAdd(ctx, index, group)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisGroups) Unlink(ctx context.Context, group, index, member string) error {
	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, group, member)
	pipe.SRem(ctx, index, group)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisGroups) Drain(ctx context.Context, index, member string, groups []string) error {
	pipe := s.client.TxPipeline()
	for _, g := range groups {
		pipe.SRem(ctx, g, member)
	}
	pipe.Del(ctx, index)
	_, err := pipe.Exec(ctx)
	return err
}

// Ensure the concrete type implements the interface.
var _ GroupStore = (*RedisGroups)(nil)

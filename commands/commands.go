// Package commands provides thin, non-core formatters over
// client.Client.SendCommand for the Redis commands spec.md names as the
// supported surface. Each function is a one-liner that builds the argument
// vector and calls through; none of them touch the core dispatch logic.
package commands

import "github.com/aravinth/respwire/client"

func args(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func argsBytes(head []string, tail ...[]byte) [][]byte {
	out := make([][]byte, 0, len(head)+len(tail))
	for _, p := range head {
		out = append(out, []byte(p))
	}
	out = append(out, tail...)
	return out
}

// Auth sends AUTH password.
func Auth(c *client.Client, password string, h client.ReplyHandler) error {
	return c.SendCommand(args("AUTH", password), h)
}

// Ping sends PING.
func Ping(c *client.Client, h client.ReplyHandler) error {
	return c.SendCommand(args("PING"), h)
}

// Get sends GET key.
func Get(c *client.Client, key string, h client.ReplyHandler) error {
	return c.SendCommand(args("GET", key), h)
}

// Set sends SET key value.
func Set(c *client.Client, key string, value []byte, h client.ReplyHandler) error {
	return c.SendCommand(argsBytes([]string{"SET", key}, value), h)
}

// Del sends DEL key [key ...].
func Del(c *client.Client, h client.ReplyHandler, keys ...string) error {
	return c.SendCommand(args(append([]string{"DEL"}, keys...)...), h)
}

// HSet sends HSET key field value.
func HSet(c *client.Client, key, field string, value []byte, h client.ReplyHandler) error {
	return c.SendCommand(argsBytes([]string{"HSET", key, field}, value), h)
}

// HGet sends HGET key field.
func HGet(c *client.Client, key, field string, h client.ReplyHandler) error {
	return c.SendCommand(args("HGET", key, field), h)
}

// HDel sends HDEL key field [field ...].
func HDel(c *client.Client, key string, h client.ReplyHandler, fields ...string) error {
	return c.SendCommand(args(append([]string{"HDEL", key}, fields...)...), h)
}

// SAdd sends SADD key member [member ...].
func SAdd(c *client.Client, key string, h client.ReplyHandler, members ...[]byte) error {
	return c.SendCommand(argsBytes([]string{"SADD", key}, members...), h)
}

// SCard sends SCARD key.
func SCard(c *client.Client, key string, h client.ReplyHandler) error {
	return c.SendCommand(args("SCARD", key), h)
}

// SDiff sends SDIFF key [key ...].
func SDiff(c *client.Client, h client.ReplyHandler, keys ...string) error {
	return c.SendCommand(args(append([]string{"SDIFF"}, keys...)...), h)
}

// SDiffStore sends SDIFFSTORE destination key [key ...].
func SDiffStore(c *client.Client, destination string, h client.ReplyHandler, keys ...string) error {
	return c.SendCommand(args(append([]string{"SDIFFSTORE", destination}, keys...)...), h)
}

// SInter sends SINTER key [key ...].
func SInter(c *client.Client, h client.ReplyHandler, keys ...string) error {
	return c.SendCommand(args(append([]string{"SINTER"}, keys...)...), h)
}

// SInterStore sends SINTERSTORE destination key [key ...].
func SInterStore(c *client.Client, destination string, h client.ReplyHandler, keys ...string) error {
	return c.SendCommand(args(append([]string{"SINTERSTORE", destination}, keys...)...), h)
}

// SIsMember sends SISMEMBER key member.
func SIsMember(c *client.Client, key string, member []byte, h client.ReplyHandler) error {
	return c.SendCommand(argsBytes([]string{"SISMEMBER", key}, member), h)
}

// SMembers sends SMEMBERS key.
func SMembers(c *client.Client, key string, h client.ReplyHandler) error {
	return c.SendCommand(args("SMEMBERS", key), h)
}

// SMove sends SMOVE source destination member.
func SMove(c *client.Client, source, destination string, member []byte, h client.ReplyHandler) error {
	return c.SendCommand(argsBytes([]string{"SMOVE", source, destination}, member), h)
}

// SPop sends SPOP key.
func SPop(c *client.Client, key string, h client.ReplyHandler) error {
	return c.SendCommand(args("SPOP", key), h)
}

// SPopCount sends SPOP key count.
func SPopCount(c *client.Client, key string, count int, h client.ReplyHandler) error {
	return c.SendCommand(args("SPOP", key, itoa(count)), h)
}

// SRandMember sends SRANDMEMBER key.
func SRandMember(c *client.Client, key string, h client.ReplyHandler) error {
	return c.SendCommand(args("SRANDMEMBER", key), h)
}

// SRandMemberCount sends SRANDMEMBER key count.
func SRandMemberCount(c *client.Client, key string, count int, h client.ReplyHandler) error {
	return c.SendCommand(args("SRANDMEMBER", key, itoa(count)), h)
}

// SRem sends SREM key member [member ...].
func SRem(c *client.Client, key string, h client.ReplyHandler, members ...[]byte) error {
	return c.SendCommand(argsBytes([]string{"SREM", key}, members...), h)
}

// SUnion sends SUNION key [key ...].
func SUnion(c *client.Client, h client.ReplyHandler, keys ...string) error {
	return c.SendCommand(args(append([]string{"SUNION"}, keys...)...), h)
}

// SUnionStore sends SUNIONSTORE destination key [key ...].
func SUnionStore(c *client.Client, destination string, h client.ReplyHandler, keys ...string) error {
	return c.SendCommand(args(append([]string{"SUNIONSTORE", destination}, keys...)...), h)
}

// SScan sends SSCAN key cursor.
func SScan(c *client.Client, key, cursor string, h client.ReplyHandler) error {
	return c.SendCommand(args("SSCAN", key, cursor), h)
}

// Publish sends PUBLISH channel message.
func Publish(c *client.Client, channel string, message []byte, h client.ReplyHandler) error {
	return c.SendCommand(argsBytes([]string{"PUBLISH", channel}, message), h)
}

// Subscribe sends SUBSCRIBE channel. h receives the subscribe
// acknowledgement and every subsequent message on channel.
func Subscribe(c *client.Client, channel string, h client.ReplyHandler) error {
	return c.Subscribe(channel, h)
}

// Unsubscribe sends UNSUBSCRIBE channel. h, if non-nil, receives the
// unsubscribe acknowledgement.
func Unsubscribe(c *client.Client, channel string, h client.ReplyHandler) error {
	return c.Unsubscribe(channel, h)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

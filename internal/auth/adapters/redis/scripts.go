package redis

import (
	goredis "github.com/redis/go-redis/v9"
)

// Скрипты consume, deleteAll и sweep собирают ключи сессий и индексов из
// префиксов в ARGV. В кластере такие ключи могут оказаться на другом слоте.

// createScript сохраняет запись, если токен еще не занят.
// KEYS: session, user set, expiry index. ARGV: id, user_id, token, created_at, expires_at, user_agent, ip_address, index member.
var createScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1],
  'id', ARGV[1],
  'user_id', ARGV[2],
  'token', ARGV[3],
  'created_at', ARGV[4],
  'expires_at', ARGV[5],
  'user_agent', ARGV[6],
  'ip_address', ARGV[7])
redis.call('SADD', KEYS[2], ARGV[3])
redis.call('ZADD', KEYS[3], ARGV[5], ARGV[8])
return 1
`)

// consumeScript читает и удаляет запись за один шаг.
// KEYS: session, expiry index. ARGV: token, user set prefix.
var consumeScript = goredis.NewScript(`
local fields = redis.call('HGETALL', KEYS[1])
if #fields == 0 then
  return false
end
local uid = ''
for i = 1, #fields, 2 do
  if fields[i] == 'user_id' then
    uid = fields[i + 1]
  end
end
redis.call('DEL', KEYS[1])
redis.call('SREM', ARGV[2] .. uid, ARGV[1])
redis.call('ZREM', KEYS[2], uid .. '|' .. ARGV[1])
return fields
`)

// deleteOwnedScript удаляет запись, только если она принадлежит пользователю.
// KEYS: session, user set, expiry index. ARGV: user_id, token.
var deleteOwnedScript = goredis.NewScript(`
if redis.call('HGET', KEYS[1], 'user_id') ~= ARGV[1] then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('SREM', KEYS[2], ARGV[2])
redis.call('ZREM', KEYS[3], ARGV[1] .. '|' .. ARGV[2])
return 1
`)

// deleteAllScript удаляет все записи пользователя.
// KEYS: user set, expiry index. ARGV: session prefix, user_id.
var deleteAllScript = goredis.NewScript(`
local tokens = redis.call('SMEMBERS', KEYS[1])
local removed = 0
for _, token in ipairs(tokens) do
  removed = removed + redis.call('DEL', ARGV[1] .. token)
  redis.call('ZREM', KEYS[2], ARGV[2] .. '|' .. token)
end
redis.call('DEL', KEYS[1])
return removed
`)

// sweepScript удаляет записи с expires_at <= now.
// KEYS: expiry index. ARGV: now, session prefix, user set prefix.
var sweepScript = goredis.NewScript(`
local members = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local removed = 0
for _, member in ipairs(members) do
  local sep = string.find(member, '|', 1, true)
  if sep then
    local uid = string.sub(member, 1, sep - 1)
    local token = string.sub(member, sep + 1)
    removed = removed + redis.call('DEL', ARGV[2] .. token)
    redis.call('SREM', ARGV[3] .. uid, token)
  end
end
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
return removed
`)

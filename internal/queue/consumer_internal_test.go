package queue

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

type fakeStreamAPI struct {
	streams []redis.XStream
	readErr error

	acked []string
	added []*redis.XAddArgs
}

func (f *fakeStreamAPI) XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeStreamAPI) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	cmd := redis.NewXStreamSliceCmd(ctx)
	if f.readErr != nil {
		cmd.SetErr(f.readErr)
	} else {
		cmd.SetVal(f.streams)
	}
	return cmd
}

func (f *fakeStreamAPI) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	f.acked = append(f.acked, ids...)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(ids)))
	return cmd
}

func (f *fakeStreamAPI) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, a)
	cmd := redis.NewStringCmd(ctx)
	cmd.SetVal("1700000001-0")
	return cmd
}

var _ = Describe("RedisConsumer", func() {
	var (
		ctx      context.Context
		fake     *fakeStreamAPI
		consumer *RedisConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = &fakeStreamAPI{}
		consumer = &RedisConsumer{
			client: fake,
			cfg: ConsumerConfig{
				Stream:      "slack-dispatch",
				Group:       "slack-dispatch-group",
				Consumer:    "dispatch-worker",
				DLQStream:   "slack-dispatch-dlq",
				BatchSize:   10,
				MaxAttempts: 5,
			},
		}
	})

	Describe("Read", func() {
		It("acks and drops malformed messages but keeps the rest of the batch", func() {
			fake.streams = []redis.XStream{{
				Stream: "slack-dispatch",
				Messages: []redis.XMessage{
					{ID: "1700000000-0", Values: map[string]any{"attempt": "1"}}, // no fact_id
					{ID: "1700000000-1", Values: map[string]any{"fact_id": "42", "attempt": "2"}},
				},
			}}

			messages, err := consumer.Read(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(messages).To(HaveLen(1))
			Expect(messages[0].FactID).To(Equal(int64(42)))
			Expect(messages[0].Attempt).To(Equal(2))

			Expect(fake.acked).To(Equal([]string{"1700000000-0"}))
		})

		It("returns an empty batch when the read blocks until timeout", func() {
			fake.readErr = redis.Nil

			messages, err := consumer.Read(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(BeEmpty())
			Expect(fake.acked).To(BeEmpty())
		})
	})

	Describe("Requeue", func() {
		It("acks the original entry and re-adds it with the bumped attempt and last error", func() {
			msg := Message{ID: "1700000000-5", FactID: 42, Attempt: 2, TraceID: "abc123"}

			err := consumer.Requeue(ctx, msg, 3, 0, "slack: rate limited")
			Expect(err).NotTo(HaveOccurred())

			Expect(fake.acked).To(Equal([]string{"1700000000-5"}))
			Expect(fake.added).To(HaveLen(1))
			Expect(fake.added[0].Stream).To(Equal("slack-dispatch"))

			values := fake.added[0].Values.(map[string]any)
			Expect(values["fact_id"]).To(Equal(int64(42)))
			Expect(values["attempt"]).To(Equal(3))
			Expect(values["trace_id"]).To(Equal("abc123"))
			Expect(values["last_error"]).To(Equal("slack: rate limited"))
		})
	})

	Describe("SendDLQ", func() {
		It("acks the entry and adds it to the dead letter stream with the final error", func() {
			msg := Message{ID: "1700000000-9", FactID: 42, Attempt: 5}

			err := consumer.SendDLQ(ctx, msg, "channel not found")
			Expect(err).NotTo(HaveOccurred())

			Expect(fake.acked).To(Equal([]string{"1700000000-9"}))
			Expect(fake.added).To(HaveLen(1))
			Expect(fake.added[0].Stream).To(Equal("slack-dispatch-dlq"))

			values := fake.added[0].Values.(map[string]any)
			Expect(values["error"]).To(Equal("channel not found"))
			Expect(values["attempt"]).To(Equal(5))
		})
	})

	It("honors a context cancelled during the requeue delay", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := consumer.Requeue(cancelled, Message{ID: "1700000000-7", FactID: 42, Attempt: 1}, 2, time.Minute, "boom")
		Expect(err).To(MatchError(context.Canceled))

		// The original entry is acked but nothing was re-added.
		Expect(fake.acked).To(Equal([]string{"1700000000-7"}))
		Expect(fake.added).To(BeEmpty())
	})
})

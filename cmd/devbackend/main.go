// Command devbackend serves an in-memory booking backend seeded with a demo
// host, for running slotbook locally without the real API.
package main

import (
	"flag"
	"math/rand/v2"
	"net/http"
	"time"

	"slotbook/services/backend/fakebackend"
	"slotbook/services/schedule"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:3000", "listen address")
	seedValue := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for booked slots")
	tz := flag.String("tz", "UTC", "timezone the demo week is laid out in")
	flag.Parse()

	logger := utils.GetLogger()
	gin.SetMode(gin.ReleaseMode)

	loc, err := schedule.ParseLocation(*tz)
	if err != nil {
		logger.Sugar().Fatalf("devbackend: invalid timezone %q: %v", *tz, err)
	}

	fake := fakebackend.New()
	rng := rand.New(rand.NewPCG(*seedValue, *seedValue))
	slots := seed(fake, schedule.NewCalendar(loc, nil), rng, defaultSeedOptions())
	logger.Info("devbackend: seeded demo host",
		zap.String("email", demoEmail),
		zap.String("password", demoPassword),
		zap.String("sharableId", demoSharableID),
		zap.Int("slots", slots))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(fake),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Sugar().Infof("devbackend: listening on %s (base URL http://%s/api)", *addr, *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Sugar().Fatalf("devbackend: server failed: %v", err)
	}
}

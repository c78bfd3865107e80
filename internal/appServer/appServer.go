// Wiring and launching the agent: redis, rabbit, push gateway, websocket
// feed, reminder scheduler, inbox service, HTTP server.
package appServer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/assitosante/notification-agent/config"
	"github.com/assitosante/notification-agent/internal/database"
	"github.com/assitosante/notification-agent/internal/push"
	"github.com/assitosante/notification-agent/internal/rabbitMQ"
	"github.com/assitosante/notification-agent/internal/scheduler"
	"github.com/assitosante/notification-agent/internal/service"
	"github.com/assitosante/notification-agent/internal/transport"
	"github.com/assitosante/notification-agent/internal/wsclient"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Outbound push channels
	var senders []push.Sender

	if cfg.Telegram.Enabled {
		senders = append(senders, push.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}

	var queue rabbitMQ.Queue
	if cfg.Rabbit.Enabled {
		rabbitMQURL := cfg.Rabbit.URL
		if rabbitMQURL == "" {
			rabbitMQURL = fmt.Sprintf("amqp://%s:%s@%s:%d/",
				cfg.Rabbit.Username,
				cfg.Rabbit.Password,
				cfg.Rabbit.Host,
				cfg.Rabbit.Port)
		}

		q, err := rabbitMQ.NewRabbitMQ(rabbitMQ.RabbitMQConfig{
			URL:          rabbitMQURL,
			QueueName:    cfg.Rabbit.QueueName,
			ExchangeName: cfg.Rabbit.ExchangeName,
		})
		if err != nil {
			logrus.Fatalf("Failed to connect to RabbitMQ: %s", err.Error())
		}
		queue = q
		defer queue.Close()

		senders = append(senders, push.NewAMQPSender(queue))
	}

	gateway := push.NewGateway(push.Defaults{
		Icon:  cfg.Push.Icon,
		Badge: cfg.Push.Badge,
		Lang:  cfg.Push.Lang,
		Tag:   cfg.Push.Tag,
		Chime: cfg.Push.Chime,
	}, senders...)

	if !gateway.RequestPermission() {
		logrus.Warn("Push notifications disabled: no outbound channels configured")
	}

	// Inbox: backend REST source of truth, redis warm-start cache
	repo := database.NewBackendRepository(cfg.Backend.BaseURL, cfg.Backend.AuthToken, cfg.Backend.HTTPTimeout)

	var cache database.InboxCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			PoolTimeout:  cfg.Redis.PoolTimeout,
		})
		defer redisClient.Close()

		cache = database.NewRedisInboxCache(redisClient, cfg.Backend.UserID, cfg.Redis.CacheTTL)
	}

	notificationService := service.NewNotificationService(repo, cache, gateway)

	ctx := context.Background()
	if err := notificationService.Load(ctx); err != nil {
		logrus.Warnf("Starting with an empty inbox: %v", err)
	}

	// Live feed + reminder scheduler
	ws := wsclient.NewClient(wsclient.Config{
		MaxReconnectAttempts: cfg.Reminder.ReconnectAttempts,
		ReconnectDelay:       cfg.Reminder.ReconnectDelay,
	})
	ws.OnNotification(notificationService.HandleLiveNotification)
	ws.OnMedicationReminder(notificationService.HandleMedicationReminder)

	reminderScheduler := scheduler.New(gateway, cfg.Reminder.CheckInterval, notificationService.AddNotification)
	if err := reminderScheduler.Init(ws); err != nil {
		logrus.Fatalf("Failed to initialize reminder scheduler: %s", err.Error())
	}

	go ws.Connect(fmt.Sprintf(cfg.Backend.WSURL, cfg.Backend.UserID))

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(notificationService, reminderScheduler)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	reminderScheduler.StopPeriodicCheck()
	ws.Disconnect()

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}

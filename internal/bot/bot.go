package bot

import (
	"context"
	"discord-giveaways/internal/cache"
	"discord-giveaways/internal/commands"
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/config"
	"discord-giveaways/internal/database"
	"discord-giveaways/internal/i18n"
	"discord-giveaways/internal/metrics"
	"discord-giveaways/internal/redis"
	"discord-giveaways/internal/services"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	Session    *discordgo.Session
	Config     *config.Config
	DB         *database.Database
	Redis      *redis.Client
	Manager    *services.GiveawayManager
	Settings   *services.SettingsService
	Translator *i18n.Translator
	Cooldowns  CooldownTracker
	Scheduler  *framework.TimerScheduler
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	StartTime  time.Time

	cache *cache.Cache
	deps  *commands.Deps

	// ctx bounds every handler and background loop; cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires the bot. db is required, rdb may be nil, in which case cooldowns
// and the settings cache stay in process.
func New(cfg *config.Config, db *database.Database, rdb *redis.Client, logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	if db == nil {
		return nil, errors.New("bot: database is required")
	}

	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("session error: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent
	s.Client = newHTTPClient(m)

	// State backs permission lookups; messages are never cached.
	s.StateEnabled = true
	s.State.MaxMessageCount = 0
	s.ShouldReconnectOnError = true
	s.ShouldRetryOnRateLimit = true
	s.MaxRestRetries = 3

	translator, err := i18n.New(cfg.DefaultSettings.Language)
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}

	var remote cache.Remote
	if rdb != nil {
		remote = rdb
	}
	c, err := cache.New(remote, cache.Config{DefaultTTL: 10 * time.Minute})
	if err != nil {
		return nil, err
	}
	m.RegisterCache("settings", c)

	settings := services.NewSettingsService(db, c, cfg.DefaultSettings)
	renderer := services.NewDiscordRenderer(s, translator, settings)
	manager := services.NewGiveawayManager(db, renderer, services.ManagerOptions{
		UpdateCountdownEvery: cfg.Giveaways.CountdownInterval(),
	}, logger.Named("giveaways"), m)

	var cooldowns CooldownTracker
	if rdb != nil {
		cooldowns = NewRedisCooldowns(rdb)
	} else {
		cooldowns = NewMemoryCooldowns()
	}

	scheduler := framework.NewTimerScheduler()
	deps := &commands.Deps{
		Manager:    manager,
		Translator: translator,
		Logger:     logger,
		Scheduler:  scheduler,
		Emojis:     cfg.Emojis,
		ErrorTTL:   5 * time.Second,
		Database:   db,
		Settings:   settings,
		Languages:  translator.Languages(),
	}
	if rdb != nil {
		deps.Redis = rdb
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		Session:    s,
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		Manager:    manager,
		Settings:   settings,
		Translator: translator,
		Cooldowns:  cooldowns,
		Scheduler:  scheduler,
		Metrics:    m,
		Logger:     logger,
		StartTime:  time.Now(),
		cache:      c,
		deps:       deps,
		ctx:        ctx,
		cancel:     cancel,
	}

	s.AddHandler(b.Ready)
	s.AddHandler(b.GuildCreate)
	s.AddHandler(b.InteractionCreate)
	s.AddHandler(b.UnifiedMessageCreate)

	return b, nil
}

// Start connects to the gateway, starts the countdown loop and blocks until
// ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	log.Println("⚡ Connecting to Discord Gateway...")
	if err := b.Session.Open(); err != nil {
		log.Println("   Common causes:")
		log.Println("   • Invalid bot token in config")
		log.Println("   • Network connectivity issues")
		return fmt.Errorf("gateway connection failed: %w", err)
	}
	log.Println("✓ Connected to Discord Gateway")

	if b.Session.State.User == nil {
		u, err := b.Session.User("@me")
		if err != nil {
			return fmt.Errorf("failed to get bot user: %w", err)
		}
		b.Session.State.User = u
	}

	log.Println("Syncing giveaways...")
	if err := b.Manager.Sync(ctx); err != nil {
		return err
	}
	log.Printf("✓ Tracking %d giveaways", len(b.Manager.List("")))

	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		if err := b.Manager.Run(b.ctx); err != nil && !errors.Is(err, context.Canceled) {
			b.Logger.Error("giveaway loop stopped", zap.Error(err))
		}
	}()
	go func() {
		defer b.wg.Done()
		b.monitorHeartbeat(b.ctx, 30*time.Second)
	}()

	log.Println("🚀 Bot is running!")
	<-ctx.Done()
	return b.Close()
}

func (b *Bot) Close() error {
	log.Println("Shutting down...")
	b.cancel()
	b.wg.Wait()
	b.Scheduler.StopAll()

	err := b.Session.Close()
	b.cache.Close()
	if b.Redis != nil {
		b.Redis.Close()
	}
	b.DB.Close()
	if b.Logger != nil {
		_ = b.Logger.Sync()
	}
	return err
}

package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/config"
	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/internal/domain/repository"
	"github.com/oksasatya/go-slot-booking/pkg/helpers"
	"github.com/oksasatya/go-slot-booking/pkg/mailer"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

// Repositories groups the storage ports of the selected driver.
type Repositories struct {
	Users    repository.UserRepository
	Meetings repository.MeetingRepository
	Slots    repository.SlotRepository
}

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	repos       Repositories

	meetingCache application.MeetingCache
	dispatcher   *application.Dispatcher

	mailgunClient *mailer.Mailgun
	rabbitPub     *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)     { cfg = c }
func GetConfig() *config.Config      { return cfg }
func SetLogger(l *logrus.Logger)     { logger = l }
func GetLogger() *logrus.Logger      { return logger }
func SetPGPool(p *pgxpool.Pool)      { pgPool = p }
func GetPGPool() *pgxpool.Pool       { return pgPool }
func SetRedis(r *redis.Client)       { redisClient = r }
func GetRedis() *redis.Client        { return redisClient }
func SetRepositories(r Repositories) { repos = r }
func GetRepositories() Repositories  { return repos }

func SetMeetingCache(c application.MeetingCache) { meetingCache = c }
func GetMeetingCache() application.MeetingCache  { return meetingCache }
func SetDispatcher(d *application.Dispatcher)    { dispatcher = d }
func GetDispatcher() *application.Dispatcher     { return dispatcher }

func SetMailgun(m *mailer.Mailgun)            { mailgunClient = m }
func GetMailgun() *mailer.Mailgun             { return mailgunClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

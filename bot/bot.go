// Package bot is the Discord transport: it turns gateway events into
// router events and carries replies back out.
package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/command"
	"github.com/GbredngleK/NG-Insider-Bot/handler"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	eventTimeout = 30 * time.Second
	inviteMaxAge = 7 * 24 * 60 * 60
)

// Bot 封装 Discord 会话，并实现 handler.Transport
type Bot struct {
	session *discordgo.Session
	router  *handler.Router
	cfg     model.Config
	limiter *rate.Limiter
	log     logrus.FieldLogger

	baseCtx      context.Context
	interactions sync.Map // interaction id -> *discordgo.Interaction
	dmChannels   sync.Map // user id -> channel id
	connected    atomic.Bool
	onStatus     func(bool)
}

var _ handler.Transport = (*Bot)(nil)

// New 使用提供的机器人令牌创建一个新的 Discord 会话
func New(cfg model.Config, log logrus.FieldLogger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	perSecond, burst := cfg.Outbound.PerSecond, cfg.Outbound.Burst
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 1
	}

	return &Bot{
		session: dg,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		log:     log,
		baseCtx: context.Background(),
	}, nil
}

// SetRouter wires the router. It must be called before Run.
func (b *Bot) SetRouter(r *handler.Router) { b.router = r }

// OnStatus registers a callback for gateway connect and disconnect.
func (b *Bot) OnStatus(fn func(connected bool)) { b.onStatus = fn }

// Connected reports whether the gateway session is up.
func (b *Bot) Connected() bool { return b.connected.Load() }

// Run opens the gateway, registers the slash commands and blocks until ctx ends.
func (b *Bot) Run(ctx context.Context) error {
	if b.router == nil {
		return errors.New("bot: router not set")
	}
	b.baseCtx = ctx
	b.registerEventHandlers()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	defer b.session.Close()

	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", command.AllCommands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.log.WithField("commands", len(command.AllCommands)).Info("Bot is now running")
	<-ctx.Done()
	b.log.Info("Bot shutting down")
	return nil
}

func (b *Bot) registerEventHandlers() {
	b.session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Connect) { b.setConnected(true) })
	b.session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) { b.setConnected(false) })
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	// 设置必要的intents
	b.session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages
}

func (b *Bot) setConnected(up bool) {
	b.connected.Store(up)
	if b.onStatus != nil {
		b.onStatus(up)
	}
}

func (b *Bot) eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.baseCtx, eventTimeout)
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	ev, ok := messageEvent(m)
	if !ok {
		return
	}
	b.dmChannels.Store(ev.UserID, m.ChannelID)

	ctx, cancel := b.eventContext()
	defer cancel()
	b.router.Dispatch(ctx, ev)
}

// guildAllowed 检查交互是否来自允许的服务器。私信总是允许的。
func (b *Bot) guildAllowed(i *discordgo.Interaction) bool {
	allowed := b.cfg.Commands.AllowGuilds
	return i.GuildID == "" || len(allowed) == 0 || slices.Contains(allowed, i.GuildID)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.guildAllowed(i.Interaction) {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i.Interaction)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i.Interaction)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.Interaction) {
	log := b.log.WithFields(logrus.Fields{"command": i.ApplicationCommandData().Name, "interaction_id": i.ID})

	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.WithError(err).Warn("Failed to acknowledge command")
		return
	}

	ctx, cancel := b.eventContext()
	defer cancel()

	if ev, ok := commandEvent(i); ok {
		b.remember(i)
		defer b.forget(i)
		b.router.Dispatch(ctx, ev)
		if err := s.InteractionResponseDelete(i); err != nil {
			log.WithError(err).Debug("Failed to delete command acknowledgement")
		}
		return
	}

	user, roles := interactionUser(i)
	if user == nil {
		return
	}
	var answer string
	data := i.ApplicationCommandData()
	switch data.Name {
	case command.Search:
		answer = b.router.Search(ctx, user.ID, roles, optionString(data, command.OptionName))
	case command.Top:
		answer = b.router.Top(ctx, user.ID)
	default:
		log.Warn("Unknown command")
		return
	}

	if _, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: utils.StringPtr(fitContent(answer))}); err != nil {
		log.WithError(err).Warn("Failed to answer command")
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.Interaction) {
	log := b.log.WithField("interaction_id", i.ID)

	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to acknowledge component")
		return
	}

	ev, err := componentEvent(i)
	if err != nil {
		log.WithError(err).WithField("custom_id", i.MessageComponentData().CustomID).Info("Ignoring unknown component")
		return
	}
	if i.GuildID == "" {
		b.dmChannels.Store(ev.UserID, i.ChannelID)
	}

	b.remember(i)
	defer b.forget(i)

	ctx, cancel := b.eventContext()
	defer cancel()
	b.router.Dispatch(ctx, ev)
}

func (b *Bot) remember(i *discordgo.Interaction) { b.interactions.Store(i.ID, i) }
func (b *Bot) forget(i *discordgo.Interaction)   { b.interactions.Delete(i.ID) }

func (b *Bot) wait(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", model.ErrDelivery, err)
	}
	return nil
}

func (b *Bot) channelFor(ctx context.Context, target model.Target) (string, error) {
	if target.ChannelID != "" {
		return target.ChannelID, nil
	}
	if id, ok := b.dmChannels.Load(target.UserID); ok {
		return id.(string), nil
	}
	if err := b.wait(ctx); err != nil {
		return "", err
	}
	ch, err := b.session.UserChannelCreate(target.UserID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: open DM with %s: %w", model.ErrDelivery, target.UserID, err)
	}
	b.dmChannels.Store(target.UserID, ch.ID)
	return ch.ID, nil
}

// Send 发送消息并返回消息 ID
func (b *Bot) Send(ctx context.Context, target model.Target, msg model.Outgoing) (string, error) {
	channelID, err := b.channelFor(ctx, target)
	if err != nil {
		return "", err
	}

	send := &discordgo.MessageSend{
		Content:    fitContent(msg.Text),
		Components: toComponents(keyboard(msg)),
	}
	if msg.ReplyTo != "" {
		send.Reference = &discordgo.MessageReference{MessageID: msg.ReplyTo, ChannelID: channelID}
	}

	if err := b.wait(ctx); err != nil {
		return "", err
	}
	m, err := b.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: send to %s: %w", model.ErrDelivery, channelID, err)
	}
	return m.ID, nil
}

// Edit 编辑已发送的消息。text 为空时保留原文本，buttons 为 nil 时移除按钮。
func (b *Bot) Edit(ctx context.Context, target model.Target, messageID, text string, buttons [][]model.Button) error {
	channelID, err := b.channelFor(ctx, target)
	if err != nil {
		return err
	}

	components := toComponents(pack(buttons))
	edit := &discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Components: &components,
	}
	if text != "" {
		edit.Content = utils.StringPtr(fitContent(text))
	}

	if err := b.wait(ctx); err != nil {
		return err
	}
	if _, err := b.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: edit %s/%s: %w", model.ErrDelivery, channelID, messageID, err)
	}
	return nil
}

// Toast 以临时消息回复交互
func (b *Bot) Toast(ctx context.Context, ref, text string) error {
	v, ok := b.interactions.Load(ref)
	if !ok {
		return fmt.Errorf("%w: interaction %q is gone", model.ErrDelivery, ref)
	}
	if err := b.wait(ctx); err != nil {
		return err
	}
	_, err := b.session.FollowupMessageCreate(v.(*discordgo.Interaction), true, &discordgo.WebhookParams{
		Content: fitContent(text),
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: toast %s: %w", model.ErrDelivery, ref, err)
	}
	return nil
}

// CreateInvite creates a single-use invite to the archive channel.
func (b *Bot) CreateInvite(ctx context.Context, label string) (string, error) {
	channelID := b.cfg.Channels.ArchiveChannelID
	if channelID == "" {
		return "", fmt.Errorf("%w: no archive channel configured", model.ErrDelivery)
	}
	if err := b.wait(ctx); err != nil {
		return "", err
	}
	inv, err := b.session.ChannelInviteCreate(channelID, discordgo.Invite{
		MaxAge:  inviteMaxAge,
		MaxUses: 1,
		Unique:  true,
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(label))
	if err != nil {
		return "", fmt.Errorf("%w: create invite %s: %w", model.ErrDelivery, label, err)
	}
	return "https://discord.gg/" + inv.Code, nil
}

package emailer

import (
	"fmt"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/levels"
	"github.com/fazecat/momentumwatch/Internal/ranker"
	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils/config"
)

const disclaimer = `<p style="font-size:11px;color:#888;margin-top:24px;">
This is an automated screener output, not investment advice. Levels and
position sizes are mechanical suggestions derived from intraday data that
may be delayed or incomplete. Trade at your own risk.</p>`

// Emailer renders and delivers the daily watchlist via SendGrid.
type Emailer struct {
	cfg    *config.Config
	log    *zap.SugaredLogger
	apiKey string
}

func New(cfg *config.Config, log *zap.SugaredLogger) *Emailer {
	return &Emailer{
		cfg:    cfg,
		log:    log,
		apiKey: os.Getenv("SENDGRID_API_KEY"),
	}
}

// SendWatchlist delivers the picks email for the day.
func (e *Emailer) SendWatchlist(picks []levels.Pick, board []ranker.LeaderboardEntry, meta types.RunMeta) error {
	subject := fmt.Sprintf("%s: %s", e.cfg.Email.SubjectPrefix, meta.Date)
	html := FormatWatchlistHTML(picks, board, meta)
	return e.send(subject, html)
}

// SendNoPicks delivers the rejection report when nothing qualified.
func (e *Emailer) SendNoPicks(rejected []*types.Candidate, meta types.RunMeta) error {
	subject := fmt.Sprintf("%s: %s - No picks today", e.cfg.Email.SubjectPrefix, meta.Date)
	html := FormatNoPicksHTML(rejected, meta)
	return e.send(subject, html)
}

// SendMarketClosed delivers the holiday notice.
func (e *Emailer) SendMarketClosed(meta types.RunMeta) error {
	subject := fmt.Sprintf("%s: %s - Market closed", e.cfg.Email.SubjectPrefix, meta.Date)
	html := fmt.Sprintf(`<h2>Market Closed</h2>
<p>No scan ran on %s: the market is closed (weekend or holiday).</p>%s`,
		meta.Date, disclaimer)
	return e.send(subject, html)
}

func (e *Emailer) send(subject, html string) error {
	if e.apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY not set")
	}

	from := mail.NewEmail("Momentum Watchlist", e.cfg.Email.From)
	to := mail.NewEmail("", e.cfg.Email.To)
	message := mail.NewSingleEmail(from, subject, to, "", html)

	client := sendgrid.NewSendClient(e.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected email: status %d body %s", resp.StatusCode, resp.Body)
	}

	e.log.Infof("✅ Email sent (%s)", subject)
	return nil
}

// ============================================================================
// HTML RENDERING
// ============================================================================

// FormatWatchlistHTML builds the full email body for a day with picks.
func FormatWatchlistHTML(picks []levels.Pick, board []ranker.LeaderboardEntry, meta types.RunMeta) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Momentum Watchlist - %s</h2>", meta.Date)
	fmt.Fprintf(&b, `<p style="color:#666;">Run at %s | provider: %s (%s) | v%s</p>`,
		meta.RunTsCT, meta.Provider, meta.DataType, meta.Version)

	for i, p := range picks {
		b.WriteString(FormatPickHTML(i+1, p))
	}

	b.WriteString(FormatLeaderboardHTML(board))
	b.WriteString(disclaimer)
	return b.String()
}

// FormatPickHTML renders one pick block with levels, sizing and flags.
func FormatPickHTML(rank int, p levels.Pick) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<div style="border:1px solid #ddd;border-radius:6px;padding:12px;margin:12px 0;">`)
	fmt.Fprintf(&b, `<h3 style="margin:0;">#%d %s <span style="color:#666;font-weight:normal;">score %.2f</span></h3>`,
		rank, p.Symbol, p.Score)
	fmt.Fprintf(&b, `<p>Last $%.2f | VWAP $%.2f | HOD $%.2f | +%.1f%% | RVOL %.1fx</p>`,
		p.Last, p.VWAP, p.HOD, p.PctChange, p.Rvol)

	if p.Levels == nil {
		b.WriteString("<p><i>Levels unavailable for this pick.</i></p></div>")
		return b.String()
	}

	fmt.Fprintf(&b, "<p><b>%s</b>: %s</p>", p.Levels.SetupType, p.Levels.Explanation)

	if p.Levels.BuyArea != nil {
		fmt.Fprintf(&b, "<p>Buy $%.2f - $%.2f", p.Levels.BuyArea[0], p.Levels.BuyArea[1])
		if p.Levels.Stop != nil {
			fmt.Fprintf(&b, " | Stop $%.2f", *p.Levels.Stop)
		}
		for i, t := range []*float64{p.Levels.Target1, p.Levels.Target2, p.Levels.Target3} {
			if t != nil {
				fmt.Fprintf(&b, " | T%d $%.2f", i+1, *t)
			}
		}
		b.WriteString("</p>")
	} else {
		b.WriteString("<p><i>No actionable entry.</i></p>")
	}

	if pos := p.Position; pos != nil {
		goal := "misses"
		if pos.MeetsDailyGoal {
			goal = "meets"
		}
		fmt.Fprintf(&b, `<p>%d shares @ $%.2f | risk $%.2f | T1 profit $%.2f (%s daily goal)</p>`,
			pos.Shares, pos.EntryPrice, pos.TotalRisk, pos.ProfitT1, goal)
	}

	if len(p.Levels.RiskFlags) > 0 {
		var badges []string
		for _, f := range p.Levels.RiskFlags {
			badges = append(badges, fmt.Sprintf(
				`<span style="background:#fee;color:#a00;border-radius:3px;padding:1px 5px;font-size:11px;">%s</span>`, f))
		}
		fmt.Fprintf(&b, "<p>%s</p>", strings.Join(badges, " "))
	}

	b.WriteString("</div>")
	return b.String()
}

// FormatLeaderboardHTML renders the top-10 table.
func FormatLeaderboardHTML(board []ranker.LeaderboardEntry) string {
	if len(board) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<h3>Leaderboard</h3><table border="1" cellpadding="4" cellspacing="0" style="border-collapse:collapse;font-size:13px;">`)
	b.WriteString("<tr><th>#</th><th>Symbol</th><th>Score</th><th>%Chg</th><th>RVOL</th><th>Near HOD</th><th>VWAP</th></tr>")
	for _, e := range board {
		vwap := "below"
		if e.AboveVWAP {
			vwap = "above"
		}
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%.3f</td><td>%.1f%%</td><td>%.1fx</td><td>%.2f</td><td>%s</td></tr>",
			e.Rank, e.Symbol, e.Score, e.PctChange, e.Rvol, e.NearHOD, vwap)
	}
	b.WriteString("</table>")
	return b.String()
}

// FormatNoPicksHTML renders the rejection report, capped at 10 entries.
func FormatNoPicksHTML(rejected []*types.Candidate, meta types.RunMeta) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>No Picks Today - %s</h2>", meta.Date)
	b.WriteString("<p>No candidate survived the filters and score floor.</p>")

	if len(rejected) > 0 {
		if len(rejected) > 10 {
			rejected = rejected[:10]
		}
		b.WriteString("<h3>Top rejections</h3><ul>")
		for _, c := range rejected {
			fmt.Fprintf(&b, "<li><b>%s</b>: %s</li>", c.Symbol, c.RejectionReason)
		}
		b.WriteString("</ul>")
	}

	b.WriteString(disclaimer)
	return b.String()
}

package notifier

import (
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
	"github.com/pfrederiksen/rugby-fixtures/internal/logger"
)

// DefaultPostInterval is the pause between consecutive posts
const DefaultPostInterval = 2 * time.Second

// TwitterNotifier posts fixtures to Twitter
type TwitterNotifier struct {
	client    *twitter.Client
	formatter Formatter
	interval  time.Duration
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier(formatter Formatter) (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, errors.New("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	return NewTwitterNotifierWithClient(config.Client(oauth1.NoContext, token), formatter), nil
}

// NewTwitterNotifierWithClient creates a notifier around an authenticated HTTP client
func NewTwitterNotifierWithClient(httpClient *http.Client, formatter Formatter) *TwitterNotifier {
	return &TwitterNotifier{
		client:    twitter.NewClient(httpClient),
		formatter: formatter,
		interval:  DefaultPostInterval,
	}
}

// SetInterval changes the pause between posts
func (n *TwitterNotifier) SetInterval(d time.Duration) {
	n.interval = d
}

// Notify posts one tweet per fixture
func (n *TwitterNotifier) Notify(fixtures []fixture.Fixture) error {
	for i, f := range fixtures {
		post := n.formatter.Post(f)

		tweet, _, err := n.client.Statuses.Update(post, nil)
		if err != nil {
			return errors.Wrapf(err, "posting %s vs %s", f.Teams.Home, f.Teams.Away)
		}
		logger.Info("posted fixture", logger.Fields{
			"home":     f.Teams.Home,
			"away":     f.Teams.Away,
			"tweet_id": tweet.IDStr,
		})
		logger.IncrCounter("posts.sent")

		// Rate limiting: wait between tweets
		if i < len(fixtures)-1 && n.interval > 0 {
			time.Sleep(n.interval)
		}
	}

	return nil
}

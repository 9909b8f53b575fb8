// Package notifier posts fixture announcements.
//
// A DryRunNotifier prints the posts it would make; a TwitterNotifier sends
// them through the Twitter v1.1 API using OAuth1 credentials from the
// environment, pausing between posts.
package notifier

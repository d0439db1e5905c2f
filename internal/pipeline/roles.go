package pipeline

import (
	"github.com/redsum/redsum/internal/metrics"
	"github.com/redsum/redsum/pkg/csvscan"
)

// Recognized file names inside an extracted archive. Anything else is
// ignored.
const (
	filePosts         = "posts.csv"
	fileComments      = "comments.csv"
	filePostVotes     = "post_votes.csv"
	fileCommentVotes  = "comment_votes.csv"
	fileSubscriptions = "subscribed_subreddits.csv"
)

// Role names used in logs and metrics.
const (
	RolePosts         = "posts"
	RoleComments      = "comments"
	RolePostVotes     = "post_votes"
	RoleCommentVotes  = "comment_votes"
	RoleSubscriptions = "subscriptions"
)

// foldFunc routes a tokenized document into the aggregate.
type foldFunc func(*metrics.Aggregate, *csvscan.Document) error

// roleByFileName maps a recognized base file name to its role and fold.
var roleByFileName = map[string]struct {
	role string
	fold foldFunc
}{
	filePosts:         {role: RolePosts, fold: (*metrics.Aggregate).FoldPosts},
	fileComments:      {role: RoleComments, fold: (*metrics.Aggregate).FoldComments},
	filePostVotes:     {role: RolePostVotes, fold: (*metrics.Aggregate).FoldPostVotes},
	fileCommentVotes:  {role: RoleCommentVotes, fold: (*metrics.Aggregate).FoldCommentVotes},
	fileSubscriptions: {role: RoleSubscriptions, fold: (*metrics.Aggregate).FoldSubscriptions},
}

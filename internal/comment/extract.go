// Package comment はスレッドのコメントツリーを取得し、深さ優先で平坦化する。
package comment

import (
	"github.com/hitoshi/redditscraper/internal/model"
	"github.com/hitoshi/redditscraper/internal/reddit"
)

// MaxDepth はたどる返信の最大深さ。トップレベルが0。
const MaxDepth = 2

// Extract はコメントツリーを深さ優先の行きがけ順で平坦化し、最大limit件を返す。
// t1以外のノードは無視する。本文が空・削除済みのノードは返信ごと除外する。
func Extract(forest []reddit.CommentThing, limit int) []model.Comment {
	if limit <= 0 {
		return []model.Comment{}
	}
	return walk(forest, 0, limit, make([]model.Comment, 0, min(limit, len(forest))))
}

// walk はoutに追記したスライスを返す。残り容量は len(out) と limit の差で表す。
func walk(nodes []reddit.CommentThing, depth, limit int, out []model.Comment) []model.Comment {
	for _, node := range nodes {
		if len(out) >= limit {
			break
		}
		if node.Kind != reddit.KindComment || reddit.IsRemovedBody(node.Data.Body) {
			continue
		}

		out = append(out, reddit.NormalizeComment(node.Data, depth))

		if depth < MaxDepth && len(out) < limit && len(node.Data.Replies) > 0 {
			out = walk(node.Data.Replies, depth+1, limit, out)
		}
	}
	return out
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/auv-sh/avgo/internal/domain"
	"github.com/auv-sh/avgo/internal/extract"
	"github.com/auv-sh/avgo/internal/merge"
	"github.com/auv-sh/avgo/internal/provider"
)

func parseCodeArg(arg string) (domain.Code, error) {
	c, ok := extract.Code(arg)
	if !ok {
		return "", fmt.Errorf("无法从 %q 识别番号（期望形如 ABC-123）", arg)
	}
	return c, nil
}

// exitErr 把 NotFound 统一成对用户友好的一句话；其余错误原样上抛。
func exitErr(err error, what string) error {
	if provider.IsNotFound(err) {
		return fmt.Errorf("没有找到%s", what)
	}
	return err
}

func newDetailCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "detail <番号>",
		Short: "查询并合并多来源的完整条目",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCodeArg(args[0])
			if err != nil {
				return err
			}
			eng, _, err := setup(gf)
			if err != nil {
				return err
			}
			d, err := eng.FetchDetail(cmd.Context(), code)
			if err != nil {
				return exitErr(err, "：“"+string(code)+"”")
			}
			if gf.JSON {
				return emitJSON(cmd.OutOrStdout(), d)
			}
			renderDetail(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func newGetCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "get <番号>",
		Aliases: []string{"install"},
		Short:   "输出按做种数排序的磁力链接",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCodeArg(args[0])
			if err != nil {
				return err
			}
			eng, _, err := setup(gf)
			if err != nil {
				return err
			}
			d, err := eng.FetchDetail(cmd.Context(), code)
			if err != nil {
				return exitErr(err, "：“"+string(code)+"”")
			}
			ranked := merge.RankBySeeders(d.MagnetInfos)
			if len(ranked) == 0 && len(d.Magnets) == 0 {
				return fmt.Errorf("没有找到 %s 的磁力链接", code)
			}
			if gf.JSON {
				return emitJSON(cmd.OutOrStdout(), ranked)
			}
			renderMagnets(cmd.OutOrStdout(), ranked, d.Magnets)
			return nil
		},
	}
}

func newSearchCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <关键词>",
		Short: "按关键词或番号搜索",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			eng, _, err := setup(gf)
			if err != nil {
				return err
			}
			items, err := eng.Search(cmd.Context(), query)
			if err != nil {
				return exitErr(err, "：“"+query+"”")
			}
			items = filterUncen(items, gf.Uncen)
			if gf.JSON {
				return emitJSON(cmd.OutOrStdout(), items)
			}
			renderItems(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func newListCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list <演员名>",
		Aliases: []string{"ls"},
		Short:   "列出某演员的作品",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := strings.Join(args, " ")
			eng, _, err := setup(gf)
			if err != nil {
				return err
			}
			items, err := eng.ListActor(cmd.Context(), actor)
			if err != nil {
				return exitErr(err, "演员“"+actor+"”的作品")
			}
			items = filterUncen(items, gf.Uncen)
			if gf.JSON {
				return emitJSON(cmd.OutOrStdout(), items)
			}
			renderItems(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func newTopCmd(gf *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "列出最新/热门作品",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, _, err := setup(gf)
			if err != nil {
				return err
			}
			items, err := eng.Top(cmd.Context(), limit)
			if err != nil {
				return exitErr(err, "热门作品")
			}
			items = filterUncen(items, gf.Uncen)
			if gf.JSON {
				return emitJSON(cmd.OutOrStdout(), items)
			}
			renderItems(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "最多列出的条目数")
	return cmd
}

func newActorsCmd(gf *globalFlags) *cobra.Command {
	var (
		page    int
		perPage int
	)
	cmd := &cobra.Command{
		Use:   "actors",
		Short: "分页列出演员热度榜",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if page < 1 {
				return errors.New("--page 必须 >= 1")
			}
			if perPage < 1 {
				return errors.New("--per-page 必须 >= 1")
			}
			eng, _, err := setup(gf)
			if err != nil {
				return err
			}
			ranks, total, err := eng.Actors(cmd.Context(), page, perPage, gf.Uncen)
			if err != nil {
				return exitErr(err, "演员榜")
			}
			if gf.JSON {
				return emitJSON(cmd.OutOrStdout(), struct {
					Actors []domain.ActorRank `json:"actors"`
					Total  int                `json:"total"`
				}{Actors: ranks, Total: total})
			}
			renderActors(cmd.OutOrStdout(), ranks, page, total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "页码（从 1 开始）")
	cmd.Flags().IntVarP(&perPage, "per-page", "n", 50, "每页条目数")
	return cmd
}

func newViewCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view <番号>",
		Short: "输出在线观看页地址",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCodeArg(args[0])
			if err != nil {
				return err
			}
			eng, _, err := setup(gf)
			if err != nil {
				return err
			}
			u, err := eng.PlayURL(cmd.Context(), code)
			if err != nil {
				return exitErr(err, "：“"+string(code)+"”的观看页")
			}
			if gf.JSON {
				return emitJSON(cmd.OutOrStdout(), struct {
					Code domain.Code `json:"code"`
					URL  string      `json:"url"`
				}{Code: code, URL: u})
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

// filterUncen 按标题启发式过滤只留无码条目；uncen=false 时原样返回。
func filterUncen(items []domain.Item, uncen bool) []domain.Item {
	if !uncen {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		if extract.LooksUncensored(it.Title) {
			out = append(out, it)
		}
	}
	return out
}

package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/alpha_insight/internal/analyzer"
	"github.com/iWorld-y/alpha_insight/internal/dashboard"
	"github.com/iWorld-y/alpha_insight/internal/logger"
	"github.com/iWorld-y/alpha_insight/internal/render"
	"github.com/iWorld-y/alpha_insight/internal/storage"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "联网分析今日 A 股市场",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		result, err := a.ctl.RunMarketAnalysis(ctx)
		if err != nil {
			return describeMarketError(err)
		}
		render.Market(out, result)

		if diagnose, _ := cmd.Flags().GetBool("diagnose"); diagnose {
			if err := runDiagnosis(cmd, a, out); err != nil {
				return err
			}
		}
		return exportIfRequested(cmd, a)
	},
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "结合市场研判诊断持仓",
	Long:  "先完成一次市场分析（或使用 --from-history 读取最近一次记录），再基于该分析诊断当前持仓。",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if len(a.ctl.Holdings(ctx)) == 0 {
			return errors.New("持仓为空，请先使用 portfolio add 添加持仓")
		}

		if fromHistory, _ := cmd.Flags().GetBool("from-history"); fromHistory {
			result, err := a.ctl.LoadLatestMarket(ctx)
			if err != nil {
				if errors.Is(err, storage.ErrNoHistory) {
					return errors.New("没有可用的历史市场分析，请先运行 market")
				}
				return err
			}
			fmt.Fprintf(out, "使用 %s 的市场分析 (%s)\n", result.Data.Date, render.PredictionLabel(result.Data.Prediction))
		} else {
			result, err := a.ctl.RunMarketAnalysis(ctx)
			if err != nil {
				return describeMarketError(err)
			}
			render.Market(out, result)
		}

		if err := runDiagnosis(cmd, a, out); err != nil {
			return err
		}
		return exportIfRequested(cmd, a)
	},
}

func runDiagnosis(cmd *cobra.Command, a *app, out io.Writer) error {
	analysis, err := a.ctl.RunPortfolioAnalysis(cmd.Context())
	switch {
	case errors.Is(err, dashboard.ErrNoMarketContext):
		fmt.Fprintln(out, "\n市场分析未得到结构化结果，跳过持仓诊断")
		return nil
	case errors.Is(err, dashboard.ErrEmptyPortfolio):
		fmt.Fprintln(out, "\n持仓为空，跳过持仓诊断")
		return nil
	case analyzer.IsParseError(err):
		return fmt.Errorf("持仓诊断结果无法解析，请重试: %w", err)
	case analyzer.IsTransportError(err):
		return fmt.Errorf("持仓诊断请求失败，请稍后重试: %w", err)
	case err != nil:
		return err
	}
	render.Diagnosis(out, analysis)
	return nil
}

func describeMarketError(err error) error {
	if analyzer.IsTransportError(err) {
		return fmt.Errorf("市场分析请求失败，请稍后重试: %w", err)
	}
	return err
}

func exportIfRequested(cmd *cobra.Command, a *app) error {
	if export, _ := cmd.Flags().GetBool("html"); !export {
		return nil
	}
	st := a.ctl.State()
	path := cfg.Report.HTMLPath
	if err := render.ExportHTML(path, render.Report{
		Result:      st.Result,
		Diagnosis:   st.Diagnosis,
		Holdings:    a.ctl.Holdings(cmd.Context()),
		GeneratedAt: time.Now(),
	}); err != nil {
		return err
	}
	logger.Log.Infof("HTML 报告已生成: %s", path)
	fmt.Fprintf(cmd.OutOrStdout(), "\nHTML 报告: %s\n", path)
	return nil
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "管理本地持仓",
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出持仓",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()
		render.Holdings(cmd.OutOrStdout(), a.ctl.Holdings(cmd.Context()))
		return nil
	},
}

var portfolioAddCmd = &cobra.Command{
	Use:   "add <symbol> <name>",
	Short: "新增持仓",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		cost, _ := cmd.Flags().GetFloat64("cost")
		shares, _ := cmd.Flags().GetFloat64("shares")
		item, err := a.ctl.AddHolding(cmd.Context(), args[0], args[1], cost, shares)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已添加 %s %s (id: %s)\n", item.Symbol, item.Name, item.ID)
		return nil
	},
}

var portfolioRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "按 id 删除持仓",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ctl.RemoveHolding(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已删除 %s\n", args[0])
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "查看分析历史",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := a.ctl.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		render.History(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	marketCmd.Flags().Bool("diagnose", false, "分析完成后诊断持仓")
	marketCmd.Flags().Bool("html", false, "导出 HTML 报告")

	diagnoseCmd.Flags().Bool("from-history", false, "使用最近一次记录的市场分析，不重新请求")
	diagnoseCmd.Flags().Bool("html", false, "导出 HTML 报告")

	portfolioAddCmd.Flags().Float64("cost", 0, "每股持仓成本")
	portfolioAddCmd.Flags().Float64("shares", 0, "持股数量")
	portfolioCmd.AddCommand(portfolioListCmd, portfolioAddCmd, portfolioRemoveCmd)

	historyCmd.Flags().Int("limit", 20, "显示条数")
}

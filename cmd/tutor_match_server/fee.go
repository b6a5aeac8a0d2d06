package main

import (
	"fmt"

	"tutor_match_server/internal/config"
	"tutor_match_server/internal/fee"

	"github.com/spf13/cobra"
)

var (
	feeGrade     string
	feeFrequency int
	feePrice     string
)

var feeCmd = &cobra.Command{
	Use:     "fee",
	Short:   "按课时表试算信息费",
	Example: `  tutor_match_server fee --grade 高一 --frequency 2 --price "¥120/小时"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFeeTable(config.GetConfig().FeeConfig.TablePath)
		if err != nil {
			return err
		}
		q := fee.NewCalculator(table).Compute(feeGrade, feeFrequency, feePrice)
		out := cmd.OutOrStdout()
		if !q.PriceValid {
			fmt.Fprintf(out, "%s: %q\n", q.Note, feePrice)
			return nil
		}
		fmt.Fprintf(out, "档位: %s\n每周次数: %d\n课时: %g 小时\n单价: %g 元/小时\n信息费: %g 元\n",
			q.Tier, q.Frequency, q.Hours, q.HourlyPrice, q.Amount)
		if q.Note != "" {
			fmt.Fprintln(out, q.Note)
		}
		return nil
	},
}

func init() {
	feeCmd.Flags().StringVar(&feeGrade, "grade", "", "年级，如 高一")
	feeCmd.Flags().IntVar(&feeFrequency, "frequency", 1, "每周次数 1-7")
	feeCmd.Flags().StringVar(&feePrice, "price", "", "时薪文案，如 ¥120/小时")
	_ = feeCmd.MarkFlagRequired("price")
}

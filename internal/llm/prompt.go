package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/prediction"
)

// promptText holds the wording of the analysis prompt in one language
type promptText struct {
	intro         string
	pipeline      string
	feeding       string
	monteCarlo    string
	lstm          string
	crfOn         string
	crfOff        string
	deviation     string
	rules         string
	primaryPool   string
	secondaryPool string
	noSecondary   string
	repeats       string
	history       string
	closing       string
	summary       string
}

// defaultLanguage is the language of the analysis summary unless configured
const defaultLanguage = "zh"

var promptTexts = map[string]promptText{
	"zh": {
		intro:         "作为一名世界级的彩票数据科学家和预测专家，请利用我提供的历史开奖数据，对【%s】进行深度建模和预测。\n\n",
		pipeline:      "请严格执行以下高级分析流程：\n",
		feeding:       "1. 数据喂养：将提供的历史数据作为训练集，输入到预测模型中。\n",
		monteCarlo:    "2. 蒙特卡洛模拟：执行 %d 次随机游走模拟，分析号码的收敛趋势和概率分布。\n",
		lstm:          "3. LSTM：训练 %d 轮，捕捉时间序列中的非线性依赖关系，重点关注近期数据的 %.1f 权重，识别冷热号交替模式。\n",
		crfOn:         "4. CRF：启用 CRF 模型，分析号码之间的相邻依赖性和转移概率，预测号码组合的连贯性。\n",
		crfOff:        "4. CRF：忽略 CRF 模型，不分析相邻依赖性。\n",
		deviation:     "5. 迭代修正与偏差分析：计算近期数据相对于理论概率的偏离度，并对预测结果进行加权赋值修正。\n\n",
		rules:         "【%s】玩法规则：\n",
		primaryPool:   "- 主号码池：%d-%d（选%d）\n",
		secondaryPool: "- 副号码池：%d-%d（选%d）\n",
		noSecondary:   "- 无副号码池，secondaryProbabilities 返回空列表\n",
		repeats:       "- 同一号码可出现在不同位置，请分析每一位的分布\n",
		history:       "\n历史数据（输入样本，共 %d 期，最新在前）：\n",
		closing: "\n请返回严格的JSON格式数据，包含：\n" +
			"- 结合了LSTM和蒙特卡洛权重的每个号码的出号概率（0-100）和偏离度。\n" +
			"- 详细的中文分析摘要 analysisSummary，解释模型是如何根据近期偏离度进行修正的。\n" +
			"- 3组基于模型的高置信度推荐组合 suggestedCombinations 及理由。\n",
		summary: "Brief summary of the analysis in Chinese, mentioning specific models used (LSTM, Monte Carlo, CRF) and data deviation findings.",
	},
	"en": {
		intro:         "You are a lottery data scientist. Using the historical draws below as the training set, model and predict the next draw of %s.\n\n",
		pipeline:      "Follow this analysis pipeline:\n",
		feeding:       "1. Data feeding: use the historical draws as the training set of the models.\n",
		monteCarlo:    "2. Monte Carlo simulation: run %d random-walk simulations and study the convergence of each number.\n",
		lstm:          "3. LSTM: train for %d epochs on the time series, weighting recent draws by %.1f, and identify hot/cold alternation.\n",
		crfOn:         "4. CRF: enabled. Analyse adjacency dependencies and transition probabilities between numbers.\n",
		crfOff:        "4. CRF: disabled. Ignore adjacency dependencies.\n",
		deviation:     "5. Deviation correction: compare recent frequencies with theoretical probability and re-weight the result.\n\n",
		rules:         "Rules of %s:\n",
		primaryPool:   "- primary pool: %d-%d (pick %d)\n",
		secondaryPool: "- secondary pool: %d-%d (pick %d)\n",
		noSecondary:   "- no secondary pool; return an empty secondaryProbabilities list\n",
		repeats:       "- a number may repeat across positions; analyse the distribution of each position\n",
		history:       "\nHistorical draws (%d, newest first):\n",
		closing: "\nReturn strict JSON containing: the probability (0-100) and deviation score of each number, " +
			"a detailed analysisSummary explaining how recent deviation corrected the model, " +
			"and 3 high-confidence suggestedCombinations with reasoning.\n",
		summary: "Brief summary of the analysis naming the models used and the deviation findings.",
	},
}

// textFor returns the prompt wording of a language, falling back to Chinese
func textFor(lang string) promptText {
	if t, ok := promptTexts[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return t
	}
	return promptTexts[defaultLanguage]
}

// buildPrompt renders the analysis instructions for one request
func buildPrompt(game lottery.Game, req prediction.Request, lang string) string {
	p := req.Parameters
	t := textFor(lang)
	label := fmt.Sprintf("%s (%s)", game.Name, game.Type)

	var sb strings.Builder
	fmt.Fprintf(&sb, t.intro, label)

	sb.WriteString(t.pipeline)
	sb.WriteString(t.feeding)
	fmt.Fprintf(&sb, t.monteCarlo, p.SimulationIterations)
	fmt.Fprintf(&sb, t.lstm, p.TrainingEpochs, p.RecentDataWeight)
	if p.UseAdjacencyModel {
		sb.WriteString(t.crfOn)
	} else {
		sb.WriteString(t.crfOff)
	}
	sb.WriteString(t.deviation)

	fmt.Fprintf(&sb, t.rules, label)
	fmt.Fprintf(&sb, t.primaryPool, game.Primary.Min, game.Primary.Max, game.Primary.Count)
	if game.Primary.AllowRepeats {
		sb.WriteString(t.repeats)
	}
	if game.HasSecondary() {
		fmt.Fprintf(&sb, t.secondaryPool, game.Secondary.Min, game.Secondary.Max, game.Secondary.Count)
	} else {
		sb.WriteString(t.noSecondary)
	}

	fmt.Fprintf(&sb, t.history, len(req.HistorySample))
	for _, rec := range req.HistorySample {
		sb.WriteString(formatDraw(rec))
		sb.WriteByte('\n')
	}

	sb.WriteString(t.closing)
	return sb.String()
}

func formatDraw(rec lottery.DrawRecord) string {
	line := fmt.Sprintf("Issue %s: Primary[%s]", rec.Issue, joinInts(rec.PrimaryNumbers))
	if len(rec.SecondaryNumbers) > 0 {
		line += fmt.Sprintf(" Secondary[%s]", joinInts(rec.SecondaryNumbers))
	}
	return line
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

package agent

// Few-shot examples and prompt templates. The examples are deliberately
// bilingual: the product's user base asks questions in Chinese, and the
// router's substring parse accepts both the English intent token and its
// Chinese equivalent.

const fewShotExamples = `
示例1:
问题: "为什么矩阵的特征值等于其行列式的值？"
意图: derivation

示例2:
问题: "用 Python 实现快速排序"
意图: code

示例3:
问题: "什么是 Schur 分解？"
意图: concept
`

func classifyPrompt(query string) string {
	return fewShotExamples + `
请根据以下问题判断意图类型（derivation/code/concept）:

问题: "` + query + `"
意图:
`
}

const derivationSystem = `你是一位数学与理论推导助手。请逐步推导，写清每一步的依据，最后给出结论。如果题目本身的前提有误，请先指出。`

const codeSystem = `你是一位编程助手。请给出可直接运行的代码实现，并附上简短的说明和复杂度分析。`

const conceptSystem = `你是一位概念讲解助手。请先用一两句话给出直观解释，再展开背景、定义和典型例子。`

// recursivePrompt is the fixed follow-up template. It is told to answer
// narrowly with respect to the highlighted fragment instead of restating
// the whole parent answer.
const recursivePrompt = `你是一个深度学习助手。用户针对之前回答中划选的某个片段进行追问。请仅围绕该片段所涉及的内容进行有针对性的回答，不要复述整个原回答。`

func followUpPrompt(query string) string {
	return recursivePrompt + "\n\n用户追问: " + query + "\n\n请针对性地回答："
}

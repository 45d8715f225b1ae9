package agents

import (
	"fmt"
	"strings"
)

const routerInstruction = "You are a supervisor that routes user requests to specialized agents:\n" +
	"- fundamentals for core metrics and comparisons\n" +
	"- sentiment for news sentiment analysis\n" +
	"- trading for strategy recommendations\n" +
	"- search for recommending stocks to buy\n" +
	"Given the following user message and chat history, identify which agents should handle it, " +
	"and extract a ticker symbol if present, along with the core question. " +
	"Respond in JSON with keys: agents (list), ticker (string or null), question (string or null)."

const synthesisInstruction = "You are a supervisor that consolidates agent outputs into a concise, user-friendly Markdown report."

const synthesisClosing = "\n\nGenerate a final answer in Markdown that addresses the user's request, synthesizes relevant data, and is concise." +
	"DO NOT INCLUDE ANY EXTRA INFORMATION. INCLUDE ONLY RELEVANT RESPONSES TO USER MESSAGE."

const directChatInstruction = "You are Buff, a helpful AI assistant focused on stocks and financial markets. " +
	"Provide concise, informative responses to user questions. " +
	"When you don't know something specific, be honest about limitations. " +
	"Format your responses using Markdown for readability."

// RouterInstruction is the routing system prompt, biased toward ticker when one is given.
func RouterInstruction(ticker string) string {
	if ticker == "" {
		return routerInstruction
	}
	return routerInstruction + "\nFocus your analysis on ticker: " + ticker
}

// DirectChatInstruction is the system prompt used when no specialist is selected.
func DirectChatInstruction(ticker string) string {
	if ticker == "" {
		return directChatInstruction
	}
	return directChatInstruction + "\nFocus your response on ticker: " + ticker
}

// SynthesisPrompt lists every result as a labeled section, in the given order.
func SynthesisPrompt(message string, results []AgentResult) string {
	sections := make([]string, len(results))
	for i, r := range results {
		sections[i] = fmt.Sprintf("### %s Agent Output:\n%s", r.Key.Title(), r.Text())
	}
	return "User asked: " + message + "\n\n" + strings.Join(sections, "\n\n") + synthesisClosing
}

// Specialist prompts

const fundamentalsInstruction = "You are a financial data analyst specializing in stock fundamentals and technical analysis. " +
	"Provide factual, data-driven answers based on the available financial metrics. " +
	"Focus on objective analysis rather than investment recommendations. " +
	"Use precise numbers and cite specific metrics when answering questions."

func fundamentalsPrompt(ticker, question string) string {
	return fmt.Sprintf("I need information about the stock %[1]s. Here's my question:\n\n%[2]s\n\n"+
		"To answer this question, first use the get_quotes function for %[1]s to retrieve current "+
		"price, market cap, PE ratio, and other fundamental metrics. Then use the get_technicals function "+
		"for %[1]s to analyze technical indicators.\n\n"+
		"Based on this data, provide a clear, concise answer to my question about %[1]s. "+
		"Include relevant numeric data and explain what the data means for investors. "+
		"If the question can't be answered with the available data, use the get_search function. "+
		"Always try to provide a data-driven answer based on the metrics retrieved. "+
		"Do NOT try to continue the conversation or ask follow-up questions.",
		ticker, question)
}

const sentimentInstruction = "You are a market sentiment analyst. Judge sentiment only from the headlines you are given."

func sentimentPrompt(ticker, headlines string) string {
	return "Current ticker: " + ticker + ". Here are the latest news headlines with URLs:\n" +
		headlines + "\n\n" +
		"Based only on these headlines and URLs, please:\n" +
		"1. Provide a sentiment score between 0 (very negative) and 1 (very positive).\n" +
		"2. List 3 key points, each referencing the relevant article URL.\n" +
		"Return a JSON object with the following structure:\n" +
		"{\n" +
		"  \"sentiment_score\": 0.0,\n" +
		"  \"key_points\": [\n" +
		"    {\"point\": \"Key insight here\", \"url\": \"article_url_here\"}\n" +
		"  ]\n" +
		"}\n" +
		"Return only the JSON."
}

const tradingInstruction = "You are a trading strategist for US equities. Ground every recommendation in the data the tools return."

func tradingPrompt(ticker string) string {
	return fmt.Sprintf("Analyze the stock symbol %s and propose a trading strategy. "+
		"You have access to the following tools: get_quotes, get_similar, get_news, get_technicals, get_price_levels, and get_recent_posts(author='trump'). "+
		"Use these tools as needed to gather current market data, news sentiment, technical indicators, support and resistance levels, peer comparisons, and recent Trump posts. "+
		"Based on the collected information, recommend whether to hold, buy on dips, or sell, and explain your logic. "+
		"Provide a clear step-by-step reasoning in text.", ticker)
}

const searchInstruction = "You are a financial advisor specializing in stock recommendations. " +
	"Provide clear, data-driven recommendations based on stock fundamentals, technical indicators, and sentiment. " +
	"Focus on actionable insights and avoid unnecessary details."

const trendingQuery = "What are some good stocks to buy?"

// NoTrendingStocks is returned by the search specialist when the web search names no symbols.
const NoTrendingStocks = "No trending stocks were found. Please try again later."

func searchPrompt(symbols []string) string {
	return fmt.Sprintf("Analyze the following stock symbols: %s. "+
		"For each stock, use the tools get_quotes, get_technicals, and get_news to gather data. "+
		"Based on the data, recommend stocks that are good to buy. "+
		"Provide clear reasoning for each recommendation, including key metrics and sentiment analysis. "+
		"Focus on actionable insights and avoid disclaimers or generic responses.",
		strings.Join(symbols, ", "))
}

package defs

import "github.com/bwmarrin/discordgo"

var SystemStatus = &discordgo.ApplicationCommand{
	Name:        "system-status",
	Description: "Show bot and host status",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "系统状态",
		discordgo.ChineseTW: "系統狀態",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "查看机器人与主机运行状态",
		discordgo.ChineseTW: "查看機器人與主機運行狀態",
	},
}

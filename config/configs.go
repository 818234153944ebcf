package config

import (
	"encoding/xml"
	"fmt"
	"os"
)

var MainOutRouter string
var MainRouter string
var DSN string
var Dem string
var Dbname string
var Download string
var DeviceName string
var MainConfig Config

// ContourDefaults 等高线生成的默认参数
type ContourDefaults struct {
	Interval         float64 `xml:"interval"`
	MajorInterval    float64 `xml:"majorinterval"`
	BlurPasses       int     `xml:"blurpasses"`
	SmoothIterations int     `xml:"smoothiterations"`
}

type Config struct {
	XMLName       xml.Name        `xml:"config"`
	MainRouter    string          `xml:"MainRouter"`
	MainOutRouter string          `xml:"MainOutRouter"`
	Dbname        string          `xml:"dbname"`
	Host          string          `xml:"host"`
	Port          string          `xml:"port"`
	Username      string          `xml:"user"`
	Password      string          `xml:"password"`
	Dem           string          `xml:"dem"`
	RootPath      string          `xml:"RootPath"`
	DeviceName    string          `xml:"DeviceName"`
	Download      string          `xml:"download"`
	Contour       ContourDefaults `xml:"contour"`
}

func init() {
	// 等高线默认参数，配置文件可覆盖
	MainConfig.Contour = ContourDefaults{
		Interval:         10,
		SmoothIterations: 2,
	}

	xmlFile, err := os.Open("config.xml")
	if err != nil {
		fmt.Println("Error  opening  file:", err)
		return
	}
	defer xmlFile.Close()

	xmlDecoder := xml.NewDecoder(xmlFile)
	err = xmlDecoder.Decode(&MainConfig)
	if err != nil {
		fmt.Println("Error  decoding  XML:", err)
		return
	}
	MainOutRouter = MainConfig.MainOutRouter
	MainRouter = MainConfig.MainRouter
	Dem = MainConfig.Dem
	Dbname = MainConfig.Dbname
	Download = MainConfig.Download
	DeviceName = MainConfig.DeviceName

	if MainConfig.Contour.Interval <= 0 {
		MainConfig.Contour.Interval = 10
	}
	if MainConfig.Contour.SmoothIterations <= 0 {
		MainConfig.Contour.SmoothIterations = 2
	}

	DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC", MainConfig.Host, MainConfig.Username, MainConfig.Password, MainConfig.Dbname, MainConfig.Port)

}

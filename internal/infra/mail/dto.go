package mail

type DownloadEmailData struct {
	Name         string
	DownloadURL  string
	CampaignName string
}

type EmailSender struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	Subject      string
	CampaignName string
	DownloadURL  string
}

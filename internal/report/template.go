package report

// defaultTemplate is the built-in patient report layout, used when no
// template file is configured.
const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Eye Screening Report - Patient {{.PatientID}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            max-width: 800px;
            margin: 40px auto;
            padding: 20px;
            line-height: 1.6;
        }
        .header {
            background-color: #4CAF50;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px;
        }
        .result-box {
            background-color: #f0f0f0;
            padding: 20px;
            margin: 20px 0;
            border-radius: 5px;
            border-left: 5px solid #4CAF50;
        }
        .result-positive {
            border-left-color: #ff9800;
        }
        .section {
            margin: 30px 0;
        }
        .section-title {
            font-size: 20px;
            font-weight: bold;
            color: #333;
            margin-bottom: 15px;
            border-bottom: 2px solid #4CAF50;
            padding-bottom: 5px;
        }
        .image-container {
            text-align: center;
            margin: 20px 0;
        }
        .image-container img {
            max-width: 100%;
            height: auto;
            border-radius: 5px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .info-grid {
            display: grid;
            grid-template-columns: 150px 1fr;
            gap: 10px;
            margin: 15px 0;
        }
        .info-label {
            font-weight: bold;
        }
        .important-note {
            background-color: #fff3cd;
            border: 1px solid #ffc107;
            padding: 15px;
            border-radius: 5px;
            margin: 20px 0;
        }
        .qr-footer {
            text-align: center;
            color: #666;
            margin-top: 30px;
        }
        .qr-footer img {
            width: 110px;
            height: 110px;
        }
        ul {
            line-height: 2;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Eye Disease Screening Report</h1>
        <p>Diabetic Retinopathy Screening</p>
    </div>

    <div class="section">
        <div class="info-grid">
            <div class="info-label">Patient ID:</div>
            <div>{{.PatientID}}</div>
            <div class="info-label">Age:</div>
            <div>{{.Age}}</div>
            <div class="info-label">Gender:</div>
            <div>{{.Gender}}</div>
            <div class="info-label">Screening Date:</div>
            <div>{{.Date}}</div>
        </div>
    </div>

    <div class="result-box{{if .Positive}} result-positive{{end}}">
        <h2 style="margin-top: 0;">YOUR RESULT</h2>
        <p style="font-size: 24px; font-weight: bold; margin: 10px 0;">{{.Diagnosis}}</p>
        <p>Confidence: The computer is {{.ConfidencePct}}% sure about this result ({{.ConfidenceLevel}}).</p>
    </div>

    <div class="section">
        <div class="section-title">YOUR EYE PHOTO</div>
        <div class="image-container">
            <img src="{{.ImagePath}}" alt="Eye Photo">
        </div>
    </div>

{{if .OverlayPath}}    <div class="section">
        <div class="section-title">WHAT THE COMPUTER SAW</div>
        <div class="image-container">
            <img src="{{.OverlayPath}}" alt="Analysis">
        </div>
        <p style="text-align: center; color: #666;">
            <strong>Colored areas show where the computer looked most closely:</strong><br>
            Red/Yellow = Areas checked carefully | Blue/Green = Normal areas
        </p>
{{if .FocusAreas}}        <p style="text-align: center; color: #666;">
            The computer looked most closely at the {{.FocusAreas}} of your eye photo.
        </p>
{{end}}    </div>
{{end}}
    <div class="section">
        <div class="section-title">HOW SURE IS THE RESULT?</div>
        <div class="image-container">
            <img src="{{.ChartPath}}" alt="Confidence">
        </div>
    </div>

    <div class="section">
        <div class="section-title">WHAT THIS MEANS FOR YOU</div>
        {{.Explanation}}
    </div>

    <div class="section">
        <div class="section-title">WHAT TO DO NEXT</div>
        {{.NextSteps}}
    </div>

    <div class="important-note">
        <strong>&#9888; IMPORTANT NOTES:</strong>
        <ul>
            <li>This is a screening tool, not a final diagnosis</li>
            <li>An eye doctor needs to confirm these results</li>
            <li>Keep taking care of your diabetes with your regular doctor</li>
            <li>Questions? Ask the nurse or volunteer who did your screening</li>
        </ul>
    </div>
{{if .QRPath}}
    <div class="qr-footer">
        <img src="{{.QRPath}}" alt="Report QR">
        <p>Report {{.ReportID}} &mdash; scan to verify</p>
    </div>
{{end}}</body>
</html>
`
